package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ideastack/ember/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// envKeys lists every variable the loader reads in these tests.
var envKeys = []string{
	"EMBER_CONFIG", "EMBER_ADDR", "EMBER_STORE", "EMBER_SQLITE_PATH",
	"EMBER_QUEUE_SIZE", "EMBER_WORKER_COUNT", "EMBER_LOG_LEVEL",
	"EMBER_MAX_FEED_LIMIT", "EMBER_DEFAULT_FEED_LIMIT",
}

func clearEnv() {
	for _, k := range envKeys {
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clean environment", t, func() {
		clearEnv()
		Reset(clearEnv)

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.Store, ShouldEqual, config.StoreMemory)
				So(cfg.EventQueueSize, ShouldEqual, 100_000)
				So(cfg.WorkerCount, ShouldEqual, 4)
				So(cfg.DefaultFeedLimit, ShouldEqual, 20)
				So(cfg.MaxFeedLimit, ShouldEqual, 100)
				So(cfg.Spark.PerIdeaCap, ShouldEqual, 60)
				So(cfg.Quality.Baseline, ShouldEqual, 50)
				So(cfg.Ranking.Anonymous.Relevance, ShouldEqual, 0)
			})
		})

		Convey("When environment variables override flat keys", func() {
			os.Setenv("EMBER_ADDR", ":7070")
			os.Setenv("EMBER_QUEUE_SIZE", "512")
			os.Setenv("EMBER_LOG_LEVEL", "debug")
			cfg, err := config.Load(ctx)

			Convey("Then the overridden values win and the rest stay default", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.EventQueueSize, ShouldEqual, 512)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.WorkerCount, ShouldEqual, 4)
			})
		})

		Convey("When a config file sets nested engine constants", func() {
			path := filepath.Join(t.TempDir(), "ember.yaml")
			content := []byte("addr: \":6060\"\nspark:\n  per_idea_cap: 25\nquality:\n  baseline: 40\n")
			So(os.WriteFile(path, content, 0o600), ShouldBeNil)
			os.Setenv("EMBER_CONFIG", path)
			cfg, err := config.Load(ctx)

			Convey("Then file values layer over the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.Spark.PerIdeaCap, ShouldEqual, 25)
				So(cfg.Quality.Baseline, ShouldEqual, 40)
				So(cfg.Spark.SaveWeight, ShouldEqual, 3)
			})
		})

		Convey("When env and file both set the same key", func() {
			path := filepath.Join(t.TempDir(), "ember.yaml")
			So(os.WriteFile(path, []byte("addr: \":6060\"\n"), 0o600), ShouldBeNil)
			os.Setenv("EMBER_CONFIG", path)
			os.Setenv("EMBER_ADDR", ":5050")
			cfg, err := config.Load(ctx)

			Convey("Then the environment wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
			})
		})

		Convey("When the store backend is unknown", func() {
			os.Setenv("EMBER_STORE", "postgres")
			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the sqlite backend is selected", func() {
			os.Setenv("EMBER_STORE", "sqlite")
			os.Setenv("EMBER_SQLITE_PATH", filepath.Join(t.TempDir(), "feed.db"))
			cfg, err := config.Load(ctx)

			Convey("Then the backend and path are applied", func() {
				So(err, ShouldBeNil)
				So(cfg.Store, ShouldEqual, config.StoreSQLite)
				So(filepath.Base(cfg.SQLitePath), ShouldEqual, "feed.db")
			})
		})

		Convey("When the config file is missing", func() {
			os.Setenv("EMBER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(ctx)

			Convey("Then loading fails with the load sentinel", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When the feed limits are inconsistent", func() {
			os.Setenv("EMBER_DEFAULT_FEED_LIMIT", "500")
			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
