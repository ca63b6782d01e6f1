package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if EMBER_CONFIG is set
//  3. env (prefix EMBER_), flat top-level keys only
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("EMBER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: EMBER_ADDR, EMBER_QUEUE_SIZE, ...
	// Map env keys like EMBER_QUEUE_SIZE -> queue_size. Underscores are
	// preserved to match the koanf tags, so env overrides reach the flat
	// top-level fields; nested engine constants are file-only.
	envProvider := env.Provider("EMBER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "ember_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, cfg.Store)
	}
	if cfg.Store == StoreSQLite && cfg.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	}
	if cfg.MaxFeedLimit < 1 {
		return fmt.Errorf("%w: max_feed_limit must be positive", ErrInvalidConfig)
	}
	if cfg.DefaultFeedLimit < 1 || cfg.DefaultFeedLimit > cfg.MaxFeedLimit {
		return fmt.Errorf("%w: default_feed_limit must be in [1, max_feed_limit]", ErrInvalidConfig)
	}
	return nil
}
