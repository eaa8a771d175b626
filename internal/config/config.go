// Package config provides configuration management with hot-reload
// support. It uses fsnotify to watch for file changes and atomic pointer
// swaps for zero-downtime updates.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the coach AI layer.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Remote   RemoteConfig   `yaml:"remote"`
	Cache    CacheConfig    `yaml:"cache"`
	Budget   BudgetConfig   `yaml:"budget"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ProviderConfig identifies the remote generative-text provider.
type ProviderConfig struct {
	Name    string `yaml:"name"` // currently "openai"
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// RemoteConfig tunes the remote model client.
type RemoteConfig struct {
	Model             string        `yaml:"model"`
	LargeModel        string        `yaml:"large_model"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	AttemptTimeout    time.Duration `yaml:"attempt_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// CacheConfig tunes the response caches.
type CacheConfig struct {
	MaxEntries int            `yaml:"max_entries"`
	DefaultTTL time.Duration  `yaml:"default_ttl"`
	Persist    bool           `yaml:"persist"`
	Semantic   SemanticConfig `yaml:"semantic"`
}

// SemanticConfig tunes the similarity cache for coaching queries.
type SemanticConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Threshold  float64       `yaml:"threshold"`
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// BudgetConfig sets the usage quotas. -1 means unlimited.
type BudgetConfig struct {
	DailyUnits   int `yaml:"daily_units"`
	MonthlyUnits int `yaml:"monthly_units"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file, sqlite
	Path    string `yaml:"path"`    // directory (file) or database file (sqlite)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name: "openai",
		},
		Remote: RemoteConfig{
			Model:             "gpt-4o-mini",
			LargeModel:        "gpt-4o",
			MaxRetries:        2,
			RetryBackoff:      500 * time.Millisecond,
			AttemptTimeout:    15 * time.Second,
			RequestsPerMinute: 20,
		},
		Cache: CacheConfig{
			MaxEntries: 500,
			DefaultTTL: 6 * time.Hour,
			Persist:    true,
			Semantic: SemanticConfig{
				Enabled:    true,
				Threshold:  0.8,
				MaxEntries: 50,
				TTL:        6 * time.Hour,
			},
		},
		Budget: BudgetConfig{
			DailyUnits:   100_000,
			MonthlyUnits: 2_000_000,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return fmt.Errorf("provider.name is required")
	}

	if c.Remote.Model == "" {
		return fmt.Errorf("remote.model is required")
	}
	if c.Remote.MaxRetries < 0 {
		return fmt.Errorf("remote.max_retries cannot be negative")
	}
	if c.Remote.AttemptTimeout < 0 {
		return fmt.Errorf("remote.attempt_timeout cannot be negative")
	}
	if c.Remote.RequestsPerMinute < 0 {
		return fmt.Errorf("remote.requests_per_minute cannot be negative")
	}

	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive")
	}
	if c.Cache.Semantic.Enabled {
		if c.Cache.Semantic.Threshold <= 0 || c.Cache.Semantic.Threshold > 1 {
			return fmt.Errorf("cache.semantic.threshold must be in (0, 1]")
		}
		if c.Cache.Semantic.MaxEntries <= 0 {
			return fmt.Errorf("cache.semantic.max_entries must be positive")
		}
	}

	// -1 means unlimited; other negatives are mistakes.
	if c.Budget.DailyUnits < -1 {
		return fmt.Errorf("budget.daily_units must be >= -1")
	}
	if c.Budget.MonthlyUnits < -1 {
		return fmt.Errorf("budget.monthly_units must be >= -1")
	}

	switch c.Storage.Backend {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	return nil
}
