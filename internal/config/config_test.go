package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DASHBOARD_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 50, cfg.StockPageSize)
	assert.Equal(t, "@every 10s", cfg.PriceTickSchedule)
	assert.Equal(t, filepath.Join(dir, "session.db"), cfg.SessionDBPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DASHBOARD_DATA_DIR", t.TempDir())
	t.Setenv("DASHBOARD_API_BASE_URL", "https://quant.example.com/api/v1/")
	t.Setenv("DASHBOARD_API_TIMEOUT", "30")
	t.Setenv("DASHBOARD_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://quant.example.com/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DASHBOARD_DATA_DIR", t.TempDir())
	t.Setenv("DASHBOARD_PORT", "not-a-number")
	t.Setenv("DEV_MODE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			APIBaseURL:           "http://localhost:8000/api/v1",
			APITimeout:           15 * time.Second,
			StockPageSize:        50,
			StrategyPageSize:     20,
			TradePageSize:        20,
			BacktestPageSize:     10,
			BacktestPollInterval: time.Second,
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.APIBaseURL = "localhost:8000"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.APIBaseURL = "ftp://localhost/api"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.APITimeout = 90 * time.Second
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.StockPageSize = 0
	assert.Error(t, cfg.Validate())
}
