// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/mayonaka-ratori/ledgermatch/internal/gateway"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Empty selects the
	// in-memory store.
	DatabaseURL string `koanf:"DATABASE_URL"`

	// MaxUploadBytes caps the size of an uploaded ledger export.
	MaxUploadBytes int64 `koanf:"MAX_UPLOAD_BYTES"`

	// MaxPoolSize is the PostgreSQL connection pool cap.
	MaxPoolSize int `koanf:"MAX_POOL_SIZE"`

	// LogJSON switches log output to JSON (for production).
	LogJSON bool `koanf:"LOG_JSON"`
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = gateway.DefaultMaxUploadBytes
	}
	return &cfg, nil
}
