package service

import (
	"context"
	"sync"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// History is the append-only list of completed orders, oldest first
type History struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *zap.Logger
}

func NewHistory(store kv.Store) *History {
	return &History{
		kv:     store,
		logger: util.Named("history"),
	}
}

// List returns every stored order. A read failure is logged and yields an
// empty list.
func (h *History) List(ctx context.Context) []models.Order {
	h.mu.Lock()
	defer h.mu.Unlock()

	orders, err := h.read(ctx)
	if err != nil {
		h.logger.Error("Failed to read history", zap.Error(err))
		return []models.Order{}
	}
	return orders
}

// Append adds order at the end. The whole list is read and written back.
func (h *History) Append(ctx context.Context, order models.Order) error {
	ctx, span := util.StartSpan(ctx, "History.Append")
	defer span.End()

	h.mu.Lock()
	defer h.mu.Unlock()

	orders, err := h.read(ctx)
	if err != nil {
		return err
	}

	orders = append(orders, order)
	if err := kv.SetJSON(ctx, h.kv, kv.KeyHistory, orders); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return err
	}
	return nil
}

// Clear removes the entire history
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.kv.Remove(ctx, kv.KeyHistory); err != nil {
		util.StorageErrorsTotal.WithLabelValues("remove").Inc()
		return err
	}
	h.logger.Info("History cleared")
	return nil
}

func (h *History) read(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if _, err := kv.GetJSON(ctx, h.kv, kv.KeyHistory, &orders); err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		return nil, err
	}
	return orders, nil
}
