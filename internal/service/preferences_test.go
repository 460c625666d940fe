package service

import (
	"context"
	"testing"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesDefaults(t *testing.T) {
	ctx := context.Background()
	p := NewPreferences(kv.NewMemory())

	assert.Equal(t, models.ThemeSystem, p.Theme(ctx))
	assert.Equal(t, models.LanguageID, p.Language(ctx))
}

func TestPreferencesStoreRawValues(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	p := NewPreferences(store)

	require.NoError(t, p.SetTheme(ctx, models.ThemeDark))
	require.NoError(t, p.SetLanguage(ctx, models.LanguageEN))

	assert.Equal(t, models.ThemeDark, p.Theme(ctx))
	assert.Equal(t, models.LanguageEN, p.Language(ctx))

	raw, err := store.Get(ctx, kv.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(raw))
}

func TestPreferencesRejectUnknown(t *testing.T) {
	ctx := context.Background()
	p := NewPreferences(kv.NewMemory())

	assert.ErrorIs(t, p.SetTheme(ctx, "sepia"), ErrValidation)
	assert.ErrorIs(t, p.SetLanguage(ctx, "fr"), ErrValidation)
	assert.Equal(t, models.ThemeSystem, p.Theme(ctx))
}
