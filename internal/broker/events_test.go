package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesOrderPlaced(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderPlacedEvent
	eh.OnOrderPlaced(func(_ context.Context, e *models.OrderPlacedEvent) error {
		got = e
		return nil
	})

	event := models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID: "1700000000000",
		Total:   28000,
		Items: []models.OrderItemData{
			{ProductID: "a", Quantity: 2, UnitPrice: 8000},
		},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: raw}))
	require.NotNil(t, got)
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, int64(28000), got.Total)
	assert.Len(t, got.Items, 1)
}

func TestHandleMessageIgnoresOtherTypes(t *testing.T) {
	eh := NewEventHandler()
	called := false
	eh.OnOrderPlaced(func(context.Context, *models.OrderPlacedEvent) error {
		called = true
		return nil
	})

	raw, _ := json.Marshal(models.ProductEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2", EventType: models.EventTypeProductCreated},
		ProductID: "p1",
	})

	assert.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: raw}))
	assert.False(t, called)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()
	assert.Error(t, eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("nope")}))
}
