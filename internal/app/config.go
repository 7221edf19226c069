package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance.
type Config struct {
	ManifestPath string // .hcl, .yaml or .yml files, or a directory of them

	LogFormat string // "text" (default) or "json"
	LogLevel  string // "debug", "info" (default), "warn" or "error"
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid LogFormat %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LogLevel %q: must be one of 'debug', 'info', 'warn', 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}
