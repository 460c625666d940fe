package worker

import (
	"context"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"
)

// StockWorker consumes ORDER_PLACED events and deducts catalog stock
type StockWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewStockWorker creates a new stock worker
func NewStockWorker(consumer *broker.Consumer, ledger *service.StockLedger) *StockWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(ledger.HandleOrderPlaced)

	return &StockWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start blocks until ctx is cancelled
func (w *StockWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting stock worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockWorker) Stop() error {
	util.GetLogger().Info("Stopping stock worker...")
	return w.consumer.Close()
}
