package service

import (
	"context"
	"sync"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// StockLedger applies ORDER_PLACED events to catalog stock. Redelivered
// events are recognised by id and applied once.
type StockLedger struct {
	mu      sync.Mutex
	catalog *Catalog
	seen    map[string]struct{}
	logger  *zap.Logger
}

func NewStockLedger(catalog *Catalog) *StockLedger {
	return &StockLedger{
		catalog: catalog,
		seen:    make(map[string]struct{}),
		logger:  util.Named("stock"),
	}
}

// HandleOrderPlaced deducts the ordered quantities from the catalog
func (l *StockLedger) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	ctx, span := util.StartSpan(ctx, "StockLedger.HandleOrderPlaced")
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[event.EventID]; ok {
		l.logger.Debug("Duplicate OrderPlaced event skipped",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.OrderID))
		return nil
	}

	n, err := l.catalog.DeductStock(ctx, event.Items)
	if err != nil {
		l.logger.Error("Failed to deduct stock",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	l.seen[event.EventID] = struct{}{}
	l.logger.Info("Stock deducted",
		zap.String("order_id", event.OrderID),
		zap.Int("units", n))
	return nil
}
