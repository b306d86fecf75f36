// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and TRIPMAP_ environment variables over them.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/tripmap/internal/domain/modes"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// VisibilityThreshold is the absolute value below which an area renders as no data.
	VisibilityThreshold float64 `koanf:"visibility_threshold"`
	// ColorClasses is the number of quantile classes of the choropleth ramp.
	ColorClasses int `koanf:"color_classes"`
	// TopN is the default number of counterparts ranked per POI direction.
	TopN int `koanf:"top_n"`

	// CacheSize bounds the memo cache; zero or less is unbounded.
	CacheSize int `koanf:"cache_size"`
	// WorkerCount sets the number of warmup workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the warmup job queue.
	QueueSize int `koanf:"queue_size"`

	// DefaultAreaType and DefaultMode fill selections that omit them.
	DefaultAreaType string `koanf:"default_area_type"`
	DefaultMode     string `koanf:"default_mode"`

	// Modes is the transport mode registry in canonical order.
	Modes []modes.Mode `koanf:"modes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		ShutdownTimeout:     10 * time.Second,
		DBPath:              "tripmap.db",
		VisibilityThreshold: 100,
		ColorClasses:        7,
		TopN:                5,
		CacheSize:           1024,
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           10_000,
		DefaultAreaType:     "tre:tilastoalue",
		DefaultMode:         "car",
	}
}

// Registry returns the configured modes, or the built-in set when none are configured.
func (c *Config) Registry() *modes.Registry {
	if len(c.Modes) == 0 {
		return modes.NewRegistry(modes.Defaults())
	}
	return modes.NewRegistry(c.Modes)
}

// Validate checks value ranges and cross-field consistency.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.ColorClasses < 1:
		return fmt.Errorf("%w: color_classes must be at least 1", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be at least 1", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1", ErrInvalidConfig)
	case c.VisibilityThreshold < 0:
		return fmt.Errorf("%w: visibility_threshold must not be negative", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	registry := c.Registry()
	if !registry.Has(c.DefaultMode) {
		return fmt.Errorf("%w: default_mode %q is not a registered mode", ErrInvalidConfig, c.DefaultMode)
	}
	for _, m := range registry.Synthetic() {
		for _, part := range m.Components {
			if !registry.Has(part) {
				return fmt.Errorf("%w: mode %q sums unknown mode %q", ErrInvalidConfig, m.Identifier, part)
			}
		}
	}
	return nil
}
