package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// Preferences stores theme and language as plain strings
type Preferences struct {
	kv kv.Store
}

func NewPreferences(store kv.Store) *Preferences {
	return &Preferences{kv: store}
}

// Theme falls back to system when unset or unreadable
func (p *Preferences) Theme(ctx context.Context) models.ThemeMode {
	mode := models.ThemeMode(p.read(ctx, kv.KeyTheme))
	if !mode.Valid() {
		return models.ThemeSystem
	}
	return mode
}

func (p *Preferences) SetTheme(ctx context.Context, mode models.ThemeMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown theme %q: %w", mode, ErrValidation)
	}
	return p.write(ctx, kv.KeyTheme, string(mode))
}

// Language falls back to Indonesian when unset or unreadable
func (p *Preferences) Language(ctx context.Context) models.Language {
	lang := models.Language(p.read(ctx, kv.KeyLanguage))
	if !lang.Valid() {
		return models.LanguageID
	}
	return lang
}

func (p *Preferences) SetLanguage(ctx context.Context, lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unknown language %q: %w", lang, ErrValidation)
	}
	return p.write(ctx, kv.KeyLanguage, string(lang))
}

func (p *Preferences) read(ctx context.Context, key string) string {
	raw, err := p.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			util.StorageErrorsTotal.WithLabelValues("read").Inc()
			util.Named("preferences").Sugar().Errorf("Failed to read %s: %v", key, err)
		}
		return ""
	}
	return string(raw)
}

func (p *Preferences) write(ctx context.Context, key, value string) error {
	if err := p.kv.Set(ctx, key, []byte(value)); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return err
	}
	return nil
}
