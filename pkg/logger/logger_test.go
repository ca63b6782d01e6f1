package logger_test

import (
	"context"
	"testing"
	"time"

	"github.com/ideastack/ember/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	Convey("Given the global logger", t, func() {
		So(logger.Init(), ShouldBeNil)
		log := logger.Get()

		Convey("When logging at each level with fields", func() {
			So(func() {
				log.Debug(ctx, "debug line", logger.String("k", "v"))
				log.Info(ctx, "info line", logger.Int("n", 1), logger.Int64("n64", 2))
				log.Warn(ctx, "warn line", logger.Float64("f", 1.5), logger.Bool("b", true))
				log.Error(ctx, "error line", logger.Duration("d", time.Second), logger.Any("x", []int{1}))
			}, ShouldNotPanic)
		})

		Convey("When deriving a named logger", func() {
			named := log.Named("component")
			So(named, ShouldNotBeNil)
			So(func() { named.Info(ctx, "scoped line") }, ShouldNotPanic)
		})

		Convey("When Get is called before Init", func() {
			// Get self-initializes; a second Get returns the same instance.
			So(logger.Get(), ShouldNotBeNil)
		})
	})

	Convey("Given the level controls", t, func() {
		Convey("When valid level names are applied", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When an unknown level name is applied", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
