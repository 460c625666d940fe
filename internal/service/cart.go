package service

import (
	"context"
	"fmt"
	"sync"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// Cart is the single buyer cart of the process. Lines keep insertion order and
// every quantity stays within [1, stock snapshot].
type Cart struct {
	mu     sync.Mutex
	lines  []models.CartLine
	kv     kv.Store
	logger *zap.Logger
}

// NewCart creates an empty cart; call Load to rehydrate it
func NewCart(store kv.Store) *Cart {
	return &Cart{
		kv:     store,
		logger: util.Named("cart"),
	}
}

// Load restores the persisted cart. A read failure leaves the cart empty.
func (c *Cart) Load(ctx context.Context) error {
	var lines []models.CartLine
	_, err := kv.GetJSON(ctx, c.kv, kv.KeyCart, &lines)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		c.logger.Error("Failed to load cart", zap.Error(err))
		c.lines = nil
		return err
	}
	c.lines = lines
	return nil
}

// AddToCart merges quantity into the product's line, or creates the line from
// a snapshot of p. Quantities are clamped silently.
func (c *Cart) AddToCart(ctx context.Context, p models.Product, quantity int) (models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "Cart.AddToCart")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.copyLines()
	var line models.CartLine

	if i := c.indexOf(p.ID); i >= 0 {
		next[i].Quantity = clampQuantity(next[i].Quantity+quantity, next[i].Stock)
		line = next[i]
	} else {
		if p.Stock <= 0 {
			return models.CartLine{}, fmt.Errorf("product %s is out of stock: %w", p.ID, ErrValidation)
		}
		line = models.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			NameID:    p.NameID,
			Price:     p.Price,
			Stock:     p.Stock,
			Unit:      p.Unit,
			Farmer:    p.Farmer,
			Category:  p.Category,
			Image:     p.Image,
			Quantity:  clampQuantity(quantity, p.Stock),
		}
		next = append(next, line)
	}

	if err := c.persist(ctx, next); err != nil {
		return models.CartLine{}, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return line, nil
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock snapshot].
// It reports false when the product is not in the cart.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) (models.CartLine, bool, error) {
	ctx, span := util.StartSpan(ctx, "Cart.UpdateQuantity")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return models.CartLine{}, false, nil
	}

	next := c.copyLines()
	next[i].Quantity = clampQuantity(quantity, next[i].Stock)

	if err := c.persist(ctx, next); err != nil {
		return models.CartLine{}, true, err
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return next[i], true, nil
}

// RemoveFromCart drops the product's line if present
func (c *Cart) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}

	next := make([]models.CartLine, 0, len(c.lines)-1)
	next = append(next, c.lines[:i]...)
	next = append(next, c.lines[i+1:]...)

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// ClearCart empties the cart
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist(ctx, []models.CartLine{}); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// RemoveLines takes ordered lines out of the cart. Quantity added to a line
// after the snapshot was taken stays in the cart, as do lines not in ordered.
func (c *Cart) RemoveLines(ctx context.Context, ordered []models.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	taken := make(map[string]int, len(ordered))
	for _, l := range ordered {
		taken[l.ProductID] += l.Quantity
	}

	next := make([]models.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		l.Quantity -= taken[l.ProductID]
		if l.Quantity > 0 {
			next = append(next, l)
		}
	}

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	util.CartMutationsTotal.WithLabelValues("checkout").Inc()
	return nil
}

// Lines returns a copy of the current lines
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLines()
}

// Total is the sum of price times quantity over all lines
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return linesTotal(c.lines)
}

// ItemCount is the sum of quantities, used for the cart badge
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) copyLines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// persist writes next and swaps it in on success. Callers hold c.mu.
func (c *Cart) persist(ctx context.Context, next []models.CartLine) error {
	if err := kv.SetJSON(ctx, c.kv, kv.KeyCart, next); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		c.logger.Error("Failed to persist cart", zap.Error(err))
		return err
	}
	c.lines = next
	return nil
}

func linesTotal(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// clampQuantity bounds q to [1, stock]. stock is always >= 1 for a line that exists.
func clampQuantity(q, stock int) int {
	clamped := q
	if clamped > stock {
		clamped = stock
	}
	if clamped < 1 {
		clamped = 1
	}
	if clamped != q {
		util.CartQuantityClampedTotal.Inc()
	}
	return clamped
}
