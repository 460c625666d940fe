package service

import (
	"context"
	"testing"

	"marketplace-service/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotalAndItemCount(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())

	_, err := cart.AddToCart(ctx, product("A", 8000, 10), 2)
	require.NoError(t, err)
	_, err = cart.AddToCart(ctx, product("B", 12000, 10), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(28000), cart.Total())
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartAddMergesAndClampsToStock(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())
	p := product("A", 5000, 5)

	line, err := cart.AddToCart(ctx, p, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	line, err = cart.AddToCart(ctx, p, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	// later catalog stock is ignored; the first-add snapshot still bounds the line
	p.Stock = 50
	line, err = cart.AddToCart(ctx, p, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	assert.Len(t, cart.Lines(), 1)
}

func TestCartAddClampsLowQuantity(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())

	line, err := cart.AddToCart(ctx, product("A", 1000, 4), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

func TestCartAddOutOfStock(t *testing.T) {
	cart := NewCart(kv.NewMemory())

	_, err := cart.AddToCart(context.Background(), product("A", 1000, 0), 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, cart.Lines())
}

func TestCartUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())
	_, err := cart.AddToCart(ctx, product("A", 1000, 6), 2)
	require.NoError(t, err)

	line, found, err := cart.UpdateQuantity(ctx, "A", 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, line.Quantity)

	line, _, err = cart.UpdateQuantity(ctx, "A", 99)
	require.NoError(t, err)
	assert.Equal(t, 6, line.Quantity)

	_, found, err = cart.UpdateQuantity(ctx, "missing", 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCartRemoveThenAddStartsFresh(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())
	p := product("A", 1000, 3)

	_, err := cart.AddToCart(ctx, p, 3)
	require.NoError(t, err)
	require.NoError(t, cart.RemoveFromCart(ctx, "A"))
	assert.Empty(t, cart.Lines())

	p.Stock = 8
	line, err := cart.AddToCart(ctx, p, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, line.Quantity)
	assert.Equal(t, 8, line.Stock)
}

func TestCartRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	cart := NewCart(store)

	require.NoError(t, cart.RemoveFromCart(ctx, "missing"))
	assert.Zero(t, store.setCalled)
}

func TestCartPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	cart := NewCart(store)
	_, err := cart.AddToCart(ctx, product("A", 2500, 9), 4)
	require.NoError(t, err)

	restored := NewCart(store)
	require.NoError(t, restored.Load(ctx))
	require.Len(t, restored.Lines(), 1)
	assert.Equal(t, 4, restored.Lines()[0].Quantity)
	assert.Equal(t, int64(10000), restored.Total())

	require.NoError(t, restored.ClearCart(ctx))
	again := NewCart(store)
	require.NoError(t, again.Load(ctx))
	assert.Empty(t, again.Lines())
}

func TestCartFailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	cart := NewCart(store)
	_, err := cart.AddToCart(ctx, product("A", 1000, 5), 2)
	require.NoError(t, err)

	store.failSet = true

	_, err = cart.AddToCart(ctx, product("B", 1000, 5), 1)
	assert.Error(t, err)
	_, _, err = cart.UpdateQuantity(ctx, "A", 5)
	assert.Error(t, err)
	assert.Error(t, cart.ClearCart(ctx))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartLinesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(kv.NewMemory())
	_, err := cart.AddToCart(ctx, product("A", 1000, 5), 2)
	require.NoError(t, err)

	lines := cart.Lines()
	lines[0].Quantity = 100
	assert.Equal(t, 2, cart.Lines()[0].Quantity)
}

func TestCartRemoveLinesKeepsLaterAdditions(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	cart := NewCart(store)
	_, err := cart.AddToCart(ctx, product("A", 1000, 10), 2)
	require.NoError(t, err)
	_, err = cart.AddToCart(ctx, product("B", 2000, 10), 1)
	require.NoError(t, err)

	snapshot := cart.Lines()

	_, err = cart.AddToCart(ctx, product("A", 1000, 10), 4)
	require.NoError(t, err)
	_, err = cart.AddToCart(ctx, product("C", 500, 10), 1)
	require.NoError(t, err)

	require.NoError(t, cart.RemoveLines(ctx, snapshot))

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, "C", lines[1].ProductID)

	restored := NewCart(store)
	require.NoError(t, restored.Load(ctx))
	assert.Len(t, restored.Lines(), 2)
}
