package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SortMode orders catalog listings
type SortMode string

const (
	SortNone      SortMode = "none"
	SortPriceAsc  SortMode = "priceAsc"
	SortPriceDesc SortMode = "priceDesc"
	SortLatest    SortMode = "latest"
)

// ParseSortMode accepts the API names plus the app's lowToHigh/highToLow aliases.
// An empty string means SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch s {
	case "", string(SortNone):
		return SortNone, nil
	case string(SortPriceAsc), "lowToHigh":
		return SortPriceAsc, nil
	case string(SortPriceDesc), "highToLow":
		return SortPriceDesc, nil
	case string(SortLatest):
		return SortLatest, nil
	}
	return "", fmt.Errorf("unknown sort mode %q: %w", s, ErrValidation)
}

// Filter narrows a listing. Zero value matches everything.
type Filter struct {
	Category models.Category
	Search   string
}

// ProductInput is what a farmer submits for a new product
type ProductInput struct {
	Name     string          `json:"name"`
	NameID   string          `json:"nameId"`
	Category models.Category `json:"category"`
	Price    int64           `json:"price"`
	Stock    int             `json:"stock"`
	Unit     string          `json:"unit"`
	Farmer   string          `json:"farmer"`
	Image    *string         `json:"image"`
}

// ProductPatch carries the fields to change; nil fields are left alone
type ProductPatch struct {
	Name     *string          `json:"name"`
	NameID   *string          `json:"nameId"`
	Category *models.Category `json:"category"`
	Price    *int64           `json:"price"`
	Stock    *int             `json:"stock"`
	Unit     *string          `json:"unit"`
	Farmer   *string          `json:"farmer"`
	Image    *string          `json:"image"`
}

// Catalog holds every sellable product. Each mutation rewrites the whole
// collection under kv.KeyProducts.
type Catalog struct {
	mu        sync.Mutex
	products  []models.Product
	kv        kv.Store
	publisher broker.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewCatalog creates an empty catalog; call Load to hydrate it
func NewCatalog(store kv.Store, publisher broker.Publisher) *Catalog {
	return &Catalog{
		kv:        store,
		publisher: publisher,
		logger:    util.Named("catalog"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Load replaces the in-memory catalog with the stored one. On a read failure
// the catalog is left empty and the error returned.
func (c *Catalog) Load(ctx context.Context) error {
	var products []models.Product
	_, err := kv.GetJSON(ctx, c.kv, kv.KeyProducts, &products)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		c.logger.Error("Failed to load catalog", zap.Error(err))
		c.products = nil
		return err
	}
	c.products = products
	c.logger.Info("Catalog loaded", zap.Int("count", len(products)))
	return nil
}

// List returns the products matching f in the requested order
func (c *Catalog) List(ctx context.Context, f Filter, mode SortMode) ([]models.Product, error) {
	_, span := util.StartSpan(ctx, "Catalog.List")
	defer span.End()

	c.mu.Lock()
	data := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.matches(p) {
			data = append(data, p)
		}
	}
	c.mu.Unlock()

	switch mode {
	case SortNone, "":
	case SortPriceAsc:
		sort.SliceStable(data, func(i, j int) bool { return data[i].Price < data[j].Price })
	case SortPriceDesc:
		sort.SliceStable(data, func(i, j int) bool { return data[i].Price > data[j].Price })
	case SortLatest:
		sort.SliceStable(data, func(i, j int) bool { return data[i].CreatedAt > data[j].CreatedAt })
	default:
		return nil, fmt.Errorf("unknown sort mode %q: %w", mode, ErrValidation)
	}

	return data, nil
}

func (f Filter) matches(p models.Product) bool {
	if f.Category != "" && f.Category != models.CategoryAll && p.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.NameID), q)
}

// Get returns a single product
func (c *Catalog) Get(_ context.Context, id string) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		return c.products[i], nil
	}
	return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
}

// Add assigns an id and creation time, appends and persists
func (c *Catalog) Add(ctx context.Context, in ProductInput) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Add")
	defer span.End()

	if err := validateProductValues(in.Category, in.Price, in.Stock); err != nil {
		return models.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.newID()
	for c.indexOf(id) >= 0 {
		id = c.newID()
	}

	p := models.Product{
		ID:        id,
		Name:      in.Name,
		NameID:    in.NameID,
		Price:     in.Price,
		Category:  in.Category,
		CreatedAt: c.now().UnixMilli(),
		Image:     in.Image,
		Unit:      in.Unit,
		Stock:     in.Stock,
		Farmer:    in.Farmer,
	}

	next := make([]models.Product, 0, len(c.products)+1)
	next = append(next, c.products...)
	next = append(next, p)

	if err := c.persist(ctx, next); err != nil {
		return models.Product{}, err
	}

	util.ProductsMutatedTotal.WithLabelValues("add").Inc()
	c.logger.Info("Product added", zap.String("product_id", p.ID), zap.String("farmer", p.Farmer))
	c.publish(ctx, models.EventTypeProductCreated, p)
	return p, nil
}

// Edit merges patch into the product with the given id. It reports false, and
// writes nothing, when no such product exists.
func (c *Catalog) Edit(ctx context.Context, id string, patch ProductPatch) (models.Product, bool, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Edit")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Product{}, false, nil
	}

	p := c.products[i]
	patch.apply(&p)
	if err := validateProductValues(p.Category, p.Price, p.Stock); err != nil {
		return models.Product{}, true, err
	}

	next := make([]models.Product, len(c.products))
	copy(next, c.products)
	next[i] = p

	if err := c.persist(ctx, next); err != nil {
		return models.Product{}, true, err
	}

	util.ProductsMutatedTotal.WithLabelValues("edit").Inc()
	c.publish(ctx, models.EventTypeProductUpdated, p)
	return p, true, nil
}

// Delete removes the product if present
func (c *Catalog) Delete(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "Catalog.Delete")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil
	}

	removed := c.products[i]
	next := make([]models.Product, 0, len(c.products)-1)
	next = append(next, c.products[:i]...)
	next = append(next, c.products[i+1:]...)

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	util.ProductsMutatedTotal.WithLabelValues("delete").Inc()
	c.publish(ctx, models.EventTypeProductDeleted, removed)
	return nil
}

// DeductStock lowers stock for ordered items, never below zero. Unknown
// products are skipped. It returns the number of units actually deducted.
func (c *Catalog) DeductStock(ctx context.Context, items []models.OrderItemData) (int, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.DeductStock")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]models.Product, len(c.products))
	copy(next, c.products)

	deducted := 0
	var touched []models.Product
	for _, item := range items {
		i := c.indexOf(item.ProductID)
		if i < 0 || item.Quantity <= 0 {
			continue
		}
		qty := item.Quantity
		if qty > next[i].Stock {
			qty = next[i].Stock
		}
		if qty == 0 {
			continue
		}
		next[i].Stock -= qty
		deducted += qty
		touched = append(touched, next[i])
	}

	if deducted == 0 {
		return 0, nil
	}

	if err := c.persist(ctx, next); err != nil {
		return 0, err
	}

	util.StockDeductedTotal.Add(float64(deducted))
	for _, p := range touched {
		c.publish(ctx, models.EventTypeProductUpdated, p)
	}
	return deducted, nil
}

func (c *Catalog) indexOf(id string) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes next and, only on success, makes it the live catalog.
// Callers hold c.mu.
func (c *Catalog) persist(ctx context.Context, next []models.Product) error {
	if err := kv.SetJSON(ctx, c.kv, kv.KeyProducts, next); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		c.logger.Error("Failed to persist catalog", zap.Error(err))
		return err
	}
	c.products = next
	return nil
}

func (c *Catalog) publish(ctx context.Context, eventType string, p models.Product) {
	event := &models.ProductEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: c.now(),
		},
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
	}
	if err := c.publisher.PublishProductEvent(ctx, event); err != nil {
		c.logger.Error("Failed to publish product event",
			zap.String("type", eventType),
			zap.String("product_id", p.ID),
			zap.Error(err))
	}
}

func (p ProductPatch) apply(dst *models.Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.NameID != nil {
		dst.NameID = *p.NameID
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Unit != nil {
		dst.Unit = *p.Unit
	}
	if p.Farmer != nil {
		dst.Farmer = *p.Farmer
	}
	if p.Image != nil {
		img := *p.Image
		dst.Image = &img
	}
}

func validateProductValues(category models.Category, price int64, stock int) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q: %w", category, ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrValidation)
	}
	return nil
}
