package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("PAYMENT_DELAY_MS", "")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, int64(15000), cfg.Business.DeliveryFee)
	assert.Equal(t, 2500*time.Millisecond, cfg.Business.PaymentDelay)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("PAYMENT_DELAY_MS", "10")
	t.Setenv("AUTH_REQUIRED", "true")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 10*time.Millisecond, cfg.Business.PaymentDelay)
	assert.True(t, cfg.Auth.Required)
}

func TestLoadMalformedNumbersUseDefaults(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "15rb")
	t.Setenv("PAYMENT_DELAY_MS", "2.5s")
	t.Setenv("JWT_TTL_MINUTES", "-")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("AUTH_REQUIRED", "maybe")

	cfg := Load()

	assert.Equal(t, int64(15000), cfg.Business.DeliveryFee)
	assert.Equal(t, 2500*time.Millisecond, cfg.Business.PaymentDelay)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Auth.Required)
}
