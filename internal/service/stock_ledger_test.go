package service

import (
	"context"
	"testing"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLedgerAppliesEventOnce(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(kv.NewMemory())
	added := addProducts(t, c, 4000)
	ledger := NewStockLedger(c)

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeOrderPlaced},
		OrderID:   "1700000000000",
		Items:     []models.OrderItemData{{ProductID: added[0].ID, Quantity: 3, UnitPrice: 4000}},
	}

	require.NoError(t, ledger.HandleOrderPlaced(ctx, event))
	require.NoError(t, ledger.HandleOrderPlaced(ctx, event))

	p, err := c.Get(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
}

func TestStockLedgerRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := newTestCatalog(store)
	added := addProducts(t, c, 4000)
	ledger := NewStockLedger(c)

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2"},
		Items:     []models.OrderItemData{{ProductID: added[0].ID, Quantity: 2}},
	}

	store.failSet = true
	assert.Error(t, ledger.HandleOrderPlaced(ctx, event))

	store.failSet = false
	require.NoError(t, ledger.HandleOrderPlaced(ctx, event))

	p, err := c.Get(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
}
