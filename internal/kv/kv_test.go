package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	lite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyTheme, []byte("dark")))
			v, err := s.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "dark", string(v))

			require.NoError(t, s.Set(ctx, KeyTheme, []byte("light")))
			v, err = s.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", string(v))

			require.NoError(t, s.Remove(ctx, KeyTheme))
			_, err = s.Get(ctx, KeyTheme)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Remove(ctx, KeyTheme))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var got []string
	found, err := GetJSON(ctx, s, KeyHistory, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	require.NoError(t, SetJSON(ctx, s, KeyHistory, []string{"a", "b"}))
	found, err = GetJSON(ctx, s, KeyHistory, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, s.Set(ctx, KeyHistory, []byte("{not json")))
	_, err = GetJSON(ctx, s, KeyHistory, &got)
	assert.Error(t, err)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
