// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and VEDIC_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/vedichart/internal/domain/chart"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// MetricsAddr is the listen address for /metrics. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// QueueSize bounds the in-memory chart request queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of chart workers. Zero means one per CPU.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many request fingerprints are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the chart store.
	ShardCount int `koanf:"shard_count"`

	// TrackedBodies lists the bodies every chart reports on.
	TrackedBodies []string `koanf:"tracked_bodies"`

	// RequiredBodies lists the bodies whose absence aborts a chart.
	RequiredBodies []string `koanf:"required_bodies"`

	// ShutdownTimeoutMS bounds how long workers get to drain the queue.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		QueueSize:         1024,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        10_000,
		ShardCount:        8,
		TrackedBodies:     chart.DefaultTrackedBodies(),
		RequiredBodies:    chart.DefaultRequiredBodies(),
		ShutdownTimeoutMS: 5_000,
	}
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	}
	if c.ShardCount <= 0 {
		return fmt.Errorf("%w: shard_count must be positive, got %d", ErrInvalidConfig, c.ShardCount)
	}
	if c.ShutdownTimeoutMS <= 0 {
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive, got %d", ErrInvalidConfig, c.ShutdownTimeoutMS)
	}
	for _, b := range c.TrackedBodies {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("%w: tracked_bodies contains an empty name", ErrInvalidConfig)
		}
	}
	for _, b := range c.RequiredBodies {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("%w: required_bodies contains an empty name", ErrInvalidConfig)
		}
	}
	return nil
}
