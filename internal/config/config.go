// Package config loads the StockLens YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration shared by the server and the
// dashboard clients.
type Config struct {
	Backend   Backend   `yaml:"backend"`
	Server    Server    `yaml:"server"`
	Upstream  Upstream  `yaml:"upstream"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Assistant Assistant `yaml:"assistant"`
	Storage   Storage   `yaml:"storage"`
	Snapshot  Snapshot  `yaml:"snapshot"`
	Logging   Logging   `yaml:"logging"`
}

// Backend tells clients where the StockLens backend lives.
type Backend struct {
	BaseURL string `yaml:"base_url"`
}

// Server holds the backend's network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Upstream selects and tunes the market-data source behind the backend.
type Upstream struct {
	Provider        string `yaml:"provider"` // "yahoo", "alpaca", or "mock"
	YahooBaseURL    string `yaml:"yahoo_base_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	QuoteCacheSecs  int    `yaml:"quote_cache_secs"`
}

// Alpaca holds credentials for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Assistant configures the optional upstream LLM behind /ask. Left empty,
// the backend answers from its canned-response table.
type Assistant struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir        string `yaml:"data_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
	HistoryTTLMins int    `yaml:"history_ttl_mins"`
}

// Snapshot configures the scheduled watchlist snapshot job.
type Snapshot struct {
	Cron string `yaml:"cron"` // robfig/cron spec, e.g. "@every 5m"; empty disables
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration at path (a missing file is fine — all
// fields have defaults), applies environment overrides, and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("UPSTREAM_PROVIDER"); v != "" {
		cfg.Upstream.Provider = v
	}
	if v := os.Getenv("ASSISTANT_API_URL"); v != "" {
		cfg.Assistant.APIURL = v
	}
	if v := os.Getenv("ASSISTANT_API_KEY"); v != "" {
		cfg.Assistant.APIKey = v
	}

	// Canonical Alpaca env vars used by the SDK take highest priority.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:5000"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Upstream.Provider == "" {
		cfg.Upstream.Provider = "yahoo"
	}
	if cfg.Upstream.RateLimitPerMin == 0 {
		cfg.Upstream.RateLimitPerMin = 60
	}
	if cfg.Upstream.QuoteCacheSecs == 0 {
		cfg.Upstream.QuoteCacheSecs = 10
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.HistoryTTLMins == 0 {
		cfg.Storage.HistoryTTLMins = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
