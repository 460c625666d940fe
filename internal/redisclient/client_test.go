package redisclient

import (
	"context"
	"testing"

	"marketplace-service/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefix(t *testing.T) {
	c := &Client{prefix: "lokatani"}
	assert.Equal(t, "lokatani:@lokatani:cart", c.key(kv.KeyCart))

	bare := &Client{}
	assert.Equal(t, kv.KeyCart, bare.key(kv.KeyCart))
}

func TestRoundTrip(t *testing.T) {
	t.Skip("Integration test - requires redis")

	c, err := NewClient("localhost:6379", "", 15, "lokatani-test")
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	require.NoError(t, c.Set(ctx, kv.KeyTheme, []byte("dark")))
	v, err := c.Get(ctx, kv.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(v))

	require.NoError(t, c.Remove(ctx, kv.KeyTheme))
	_, err = c.Get(ctx, kv.KeyTheme)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
