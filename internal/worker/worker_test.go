package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockWorkerRoutesOrderPlaced(t *testing.T) {
	ctx := context.Background()
	catalog := service.NewCatalog(kv.NewMemory(), broker.NopPublisher{})
	p, err := catalog.Add(ctx, service.ProductInput{Name: "Wortel", Category: models.CategoryVegetables, Price: 6000, Stock: 10})
	require.NoError(t, err)

	w := NewStockWorker(nil, service.NewStockLedger(catalog))

	event := models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeOrderPlaced, Timestamp: time.Now()},
		OrderID:   "1",
		Items:     []models.OrderItemData{{ProductID: p.ID, Quantity: 4, UnitPrice: 6000}},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	msg := kafka.Message{Value: raw}
	require.NoError(t, w.eventHandler.HandleMessage(ctx, msg))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, msg))

	got, err := catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
}

func TestStockWorkerIntegration(t *testing.T) {
	t.Skip("Integration test - requires Kafka")
}
