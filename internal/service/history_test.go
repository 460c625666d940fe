package service

import (
	"context"
	"testing"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(kv.NewMemory())

	assert.Empty(t, h.List(ctx))

	require.NoError(t, h.Append(ctx, models.Order{ID: "1", Total: 1000}))
	require.NoError(t, h.Append(ctx, models.Order{ID: "2", Total: 2000}))

	list := h.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2", list[1].ID)
}

func TestHistoryClear(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(kv.NewMemory())
	require.NoError(t, h.Append(ctx, models.Order{ID: "1"}))

	require.NoError(t, h.Clear(ctx))
	assert.Empty(t, h.List(ctx))
}

func TestHistoryReadFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	h := NewHistory(store)
	require.NoError(t, h.Append(ctx, models.Order{ID: "1"}))

	store.failGet = true
	assert.Empty(t, h.List(ctx))
	assert.ErrorIs(t, h.Append(ctx, models.Order{ID: "2"}), errStoreDown)

	store.failGet = false
	assert.Len(t, h.List(ctx), 1)
}
