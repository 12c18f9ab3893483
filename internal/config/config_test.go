package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("ORDER_TOTAL_POLICY", "")
	t.Setenv("SESSION_TTL_HOURS", "")

	cfg := FromEnv()
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, TotalRecompute, cfg.OrderTotalPolicy)
	assert.Equal(t, StatusPermissive, cfg.OrderStatusPolicy)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.MongoTransactions)
	assert.EqualValues(t, 5<<20, cfg.UploadMaxBytes)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("ORDER_STATUS_POLICY", "strict")
	t.Setenv("MONGO_TRANSACTIONS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_EMAIL", "Owner@Shop.Example")

	cfg := FromEnv()
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, StatusStrict, cfg.OrderStatusPolicy)
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "owner@shop.example", cfg.AdminEmail)
}

func TestGetDurationEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("SOME_TTL", "-3")
	assert.Equal(t, 20*time.Minute, getDurationEnv("SOME_TTL", 20, time.Minute))

	t.Setenv("SOME_TTL", "abc")
	assert.Equal(t, 20*time.Minute, getDurationEnv("SOME_TTL", 20, time.Minute))

	t.Setenv("SOME_TTL", "7")
	assert.Equal(t, 7*time.Minute, getDurationEnv("SOME_TTL", 20, time.Minute))
}

func TestOneOfFallsBackToFirst(t *testing.T) {
	assert.Equal(t, TotalRecompute, oneOf("bogus", TotalRecompute, TotalTrust))
	assert.Equal(t, TotalTrust, oneOf("TRUST", TotalRecompute, TotalTrust))
}
