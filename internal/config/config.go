// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(...) to layer
//   file and environment overrides on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"

	"github.com/ideastack/ember/internal/domain/quality"
	"github.com/ideastack/ember/internal/domain/ranking"
	"github.com/ideastack/ember/internal/domain/spark"
	"github.com/ideastack/ember/internal/domain/trust"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: "memory" or "sqlite".
	Store string `koanf:"store"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// EventQueueSize bounds the in-memory ingest queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of append workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxFeedLimit caps GET /feed?limit.
	MaxFeedLimit int `koanf:"max_feed_limit"`

	// DefaultFeedLimit applies when GET /feed omits limit.
	DefaultFeedLimit int `koanf:"default_feed_limit"`

	// Engine formula constants. Overridable from the config file for
	// per-environment tuning and deterministic testing.
	Spark   spark.Config   `koanf:"spark"`
	Quality quality.Config `koanf:"quality"`
	Trust   trust.Config   `koanf:"trust"`
	Ranking ranking.Config `koanf:"ranking"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		Store:            StoreMemory,
		SQLitePath:       "ember.db",
		EventQueueSize:   100_000,
		WorkerCount:      4,
		DedupeSize:       500_000,
		MaxFeedLimit:     100,
		DefaultFeedLimit: 20,
		Spark:            spark.DefaultConfig(),
		Quality:          quality.DefaultConfig(),
		Trust:            trust.DefaultConfig(),
		Ranking:          ranking.DefaultConfig(),
	}
}
