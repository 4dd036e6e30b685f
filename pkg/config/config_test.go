package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mourafe/radarb3/internal/contracts"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8087", cfg.Port)
	assert.Equal(t, "https://brapi.dev", cfg.Brapi.BaseURL)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Yahoo.BaseURL)
	assert.Equal(t, "1d", cfg.Scan.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Cache.PricesTTL)
	assert.Equal(t, time.Hour, cfg.Cache.PrimaryUniverseTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.UniverseTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCAN_WEEKS", "26")
	t.Setenv("SCAN_MIN_RETURN_PCT", "50.5")
	t.Setenv("CACHE_PRICES_TTL", "5m")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 26, cfg.Scan.Weeks)
	assert.Equal(t, 50.5, cfg.Scan.MinReturnPct)
	assert.Equal(t, 5*time.Minute, cfg.Cache.PricesTTL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("SCAN_WEEKS", "not-a-number")
	t.Setenv("CACHE_PRICES_TTL", "garbage")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, contracts.DefaultWeeks, cfg.Scan.Weeks)
	assert.Equal(t, 30*time.Minute, cfg.Cache.PricesTTL)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_WORKERS")
}

func TestDefaultScanParams_Clamped(t *testing.T) {
	t.Setenv("SCAN_WEEKS", "999")
	t.Setenv("SCAN_BATCH_SIZE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	params := cfg.DefaultScanParams()
	assert.Equal(t, contracts.MaxWeeks, params.Weeks)
	assert.Equal(t, contracts.MinBatchSize, params.BatchSize)
}
