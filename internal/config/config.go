// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Directory holding session.db (always absolute)
	APIBaseURL     string // Base URL of the trading backend, e.g. http://localhost:8000/api/v1
	APITimeout     time.Duration
	LogLevel       string
	Port           int
	DevMode        bool
	AllowedOrigins []string

	PriceTickSchedule string        // cron spec for background price refresh
	SearchDebounce    time.Duration // delay before search-as-you-type fires

	StockPageSize    int
	StrategyPageSize int
	TradePageSize    int
	BacktestPageSize int

	BacktestPollInterval time.Duration // poll cadence while a backtest is pending/running
}

const (
	minAPITimeout = time.Second
	maxAPITimeout = 60 * time.Second
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DASHBOARD_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		APIBaseURL:           strings.TrimRight(getEnv("DASHBOARD_API_BASE_URL", "http://localhost:8000/api/v1"), "/"),
		APITimeout:           time.Duration(getEnvAsInt("DASHBOARD_API_TIMEOUT", 15)) * time.Second,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("DASHBOARD_PORT", 3001),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		AllowedOrigins:       getEnvAsList("DASHBOARD_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		PriceTickSchedule:    getEnv("DASHBOARD_PRICE_TICK", "@every 10s"),
		SearchDebounce:       time.Duration(getEnvAsInt("DASHBOARD_SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		StockPageSize:        getEnvAsInt("DASHBOARD_PAGE_SIZE", 50),
		StrategyPageSize:     getEnvAsInt("DASHBOARD_STRATEGY_PAGE_SIZE", 20),
		TradePageSize:        getEnvAsInt("DASHBOARD_TRADE_PAGE_SIZE", 20),
		BacktestPageSize:     getEnvAsInt("DASHBOARD_BACKTEST_PAGE_SIZE", 10),
		BacktestPollInterval: time.Duration(getEnvAsInt("DASHBOARD_BACKTEST_POLL_SECONDS", 3)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid DASHBOARD_API_BASE_URL %q", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("DASHBOARD_API_BASE_URL must be http or https, got %q", u.Scheme)
	}
	if c.APITimeout < minAPITimeout || c.APITimeout > maxAPITimeout {
		return fmt.Errorf("DASHBOARD_API_TIMEOUT must be between %s and %s, got %s", minAPITimeout, maxAPITimeout, c.APITimeout)
	}
	for name, size := range map[string]int{
		"DASHBOARD_PAGE_SIZE":          c.StockPageSize,
		"DASHBOARD_STRATEGY_PAGE_SIZE": c.StrategyPageSize,
		"DASHBOARD_TRADE_PAGE_SIZE":    c.TradePageSize,
		"DASHBOARD_BACKTEST_PAGE_SIZE": c.BacktestPageSize,
	} {
		if size < 1 || size > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %d", name, size)
		}
	}
	if c.BacktestPollInterval <= 0 {
		return fmt.Errorf("DASHBOARD_BACKTEST_POLL_SECONDS must be positive")
	}
	return nil
}

// SessionDBPath returns the path of the session database inside DataDir.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "session.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
