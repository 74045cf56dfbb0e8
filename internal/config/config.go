// Package config loads the server configuration used by the parley CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RedisConfig configures the Redis state store and distributed lock.
type RedisConfig struct {
	// Addr enables the Redis backend when non-empty; empty keeps the
	// in-memory store.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// TTLSeconds expires idle conversations. Zero keeps them forever.
	TTLSeconds int `yaml:"ttl_seconds"`
	// Lock enables distributed session locking, for multi-replica setups.
	Lock bool `yaml:"lock"`
}

// Config is the top-level server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// InterruptThreshold overrides the NLU confidence above which
	// cancel/help/logout preempt the active dialog.
	InterruptThreshold float64 `yaml:"interrupt_threshold"`
	// Metrics exposes /metrics on the HTTP server.
	Metrics bool `yaml:"metrics"`

	Redis RedisConfig `yaml:"redis"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:               ":8129",
		LogLevel:           "info",
		InterruptThreshold: 0.5,
		Metrics:            true,
	}
}

// Load reads a YAML configuration file, filling unset fields with defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8129"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.InterruptThreshold <= 0 {
		cfg.InterruptThreshold = 0.5
	}
	return cfg, nil
}
