// Package config holds environment-based configuration for cokacdir.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"cokacdir/internal/util"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	// Chunk size for pack, in MiB.
	SplitSizeMiB int64 `env:"COKACDIR_SPLIT_SIZE_MIB" envDefault:"1800"`

	// Key file location. Empty means ~/.cokacdir/credential/cokacenc.key.
	KeyPath string `env:"COKACDIR_KEY_PATH"`

	// Default comparison method for diff: content, time or contentandtime.
	CompareMethod string `env:"COKACDIR_COMPARE_METHOD" envDefault:"content"`

	// Log level when verbose logging is enabled: debug, info, warn, error.
	LogLevel string `env:"COKACDIR_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables, first loading a
// .env file if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.KeyPath != "" {
		abs, err := filepath.Abs(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("resolving key path: %w", err)
		}
		cfg.KeyPath = abs
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SplitSizeMiB <= 0 {
		return fmt.Errorf("COKACDIR_SPLIT_SIZE_MIB must be positive, got %d", c.SplitSizeMiB)
	}
	if c.KeyPath != "" {
		if info, err := os.Stat(c.KeyPath); err == nil && info.IsDir() {
			return fmt.Errorf("COKACDIR_KEY_PATH points at a directory: %s", c.KeyPath)
		}
	}
	return nil
}

// SplitSize returns the configured chunk size in bytes.
func (c *Config) SplitSize() int64 {
	return c.SplitSizeMiB * util.MiB
}
