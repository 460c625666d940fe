// Package kv defines the key-value storage contract every service persists through,
// plus the in-memory and sqlite backends.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Logical keys. Values are JSON documents replaced as a whole on every write.
const (
	KeyUser       = "@lokatani:user"
	KeyUsers      = "@lokatani:users"
	KeyTheme      = "@lokatani:theme"
	KeyLanguage   = "@lokatani:language"
	KeyProducts   = "@lokatani:products"
	KeyCart       = "@lokatani:cart"
	KeyHistory    = "@lokatani:history"
	KeyComplaints = "@lokatani:complaints"
)

// Store is a durable string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into dst. It reports false, with a nil
// error, when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dst interface{}) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
