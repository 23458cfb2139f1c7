package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/pargo/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Pargo.Active)
	assert.True(t, cfg.Pargo.SendOnStatus)
	assert.False(t, cfg.Pargo.InsecureSkipVerify, "TLS verification must stay on by default")
	assert.Equal(t, "processing", cfg.Pargo.OrderStatus)
	assert.Equal(t, "gomedia_pargo_standard", cfg.Pargo.ShippingMethod())
	assert.Equal(t, "Pargo Pickup Point", cfg.Pargo.Name)
	assert.True(t, cfg.Pargo.Price.IsZero())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PARGO_PRICE", "45.50")
	t.Setenv("PARGO_SEND_ON_STATUS", "false")
	t.Setenv("PARGO_WAREHOUSE_CODE", "WH-01")
	t.Setenv("PARGO_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "15m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "45.5", cfg.Pargo.Price.String())
	assert.False(t, cfg.Pargo.SendOnStatus)
	assert.Equal(t, "WH-01", cfg.Pargo.WarehouseCode)
	assert.True(t, cfg.Pargo.InsecureSkipVerify)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestConfig_Attributes(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	attrs := cfg.Attributes()
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, string(a.Key))
	}
	assert.Contains(t, keys, "service.name")
	assert.Contains(t, keys, "pargo.active")
}
