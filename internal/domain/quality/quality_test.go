package quality_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/internal/domain/quality"
	. "github.com/smartystreets/goconvey/convey"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type stubEvents struct {
	byIdea map[string][]model.Event
}

func (s stubEvents) EventsForIdea(_ context.Context, ideaID string) []model.Event {
	return s.byIdea[ideaID]
}

func eventsAt(idea string, typ model.EventType, n int, age time.Duration) []model.Event {
	out := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Event{
			EventID: fmt.Sprintf("%s-%s-%d", idea, typ, i),
			Type:    typ,
			IdeaID:  idea,
			TS:      testNow.Add(-age),
		})
	}
	return out
}

func newEngine(events map[string][]model.Event, opts ...quality.Option) *quality.Engine {
	opts = append([]quality.Option{
		quality.WithClock(func() time.Time { return testNow }),
	}, opts...)
	return quality.New(stubEvents{byIdea: events}, opts...)
}

func TestQualityEngine_For(t *testing.T) {
	ctx := context.Background()
	cfg := quality.DefaultConfig()

	Convey("Given a quality engine over an event log", t, func() {
		Convey("When an idea has no events", func() {
			e := newEngine(map[string][]model.Event{})
			s := e.For(ctx, "fresh")

			Convey("Then the score sits at the baseline", func() {
				So(s.Score, ShouldEqual, cfg.Baseline)
				So(s.PositiveSignals, ShouldEqual, 0)
				So(s.NegativeSignals, ShouldEqual, 0)
				So(s.DidntWorkRate, ShouldEqual, 0)
			})
		})

		Convey("When an idea is flooded with positive signal", func() {
			e := newEngine(map[string][]model.Event{
				"hit": eventsAt("hit", model.EventSave, 1000, time.Hour),
			})
			s := e.For(ctx, "hit")

			Convey("Then the score clamps at the maximum", func() {
				So(s.Score, ShouldEqual, cfg.MaxScore)
				So(s.PositiveSignals, ShouldEqual, 1000)
			})
		})

		Convey("When an idea is flooded with negative signal", func() {
			e := newEngine(map[string][]model.Event{
				"flop": eventsAt("flop", model.EventUnsave, 1000, time.Hour),
			})
			s := e.For(ctx, "flop")

			Convey("Then the score clamps at the minimum", func() {
				So(s.Score, ShouldEqual, cfg.MinScore)
				So(s.NegativeSignals, ShouldEqual, 1000)
			})
		})

		Convey("When the same engagement happened long ago vs recently", func() {
			// Four events stays below the momentum minimum, isolating decay.
			e := newEngine(map[string][]model.Event{
				"stale":  eventsAt("stale", model.EventSave, 4, 200*24*time.Hour),
				"recent": eventsAt("recent", model.EventSave, 4, time.Hour),
			})
			stale := e.For(ctx, "stale")
			recent := e.For(ctx, "recent")

			Convey("Then age decay discounts the old engagement", func() {
				So(recent.Score, ShouldBeGreaterThan, stale.Score)
				So(stale.Score, ShouldBeLessThan, cfg.Baseline+1)
				So(stale.Score, ShouldBeGreaterThan, cfg.Baseline)
			})
		})

		Convey("When enough engagement lands inside the momentum window", func() {
			e := newEngine(map[string][]model.Event{
				"trending": eventsAt("trending", model.EventSave, 6, time.Hour),
				"steady":   eventsAt("steady", model.EventSave, 6, 72*time.Hour),
			})
			trending := e.For(ctx, "trending")
			steady := e.For(ctx, "steady")

			Convey("Then the trending idea is boosted past decay alone", func() {
				// Six saves at 1.5x: 50 + 6*2*1.5 = 68, less an hour of decay.
				So(trending.Score, ShouldAlmostEqual, 68, 0.05)
				So(trending.Score, ShouldBeGreaterThan, steady.Score)
			})
		})

		Convey("When positive signals pass the saturation count", func() {
			// Plain config so the arithmetic is exact: no momentum, no decay.
			plain := quality.Config{
				Baseline:          0,
				PositiveDelta:     1,
				NegativeDelta:     1,
				HalfLifeDays:      0,
				SaturationCount:   10,
				SaturationRate:    0.5,
				MomentumMinEvents: 1 << 30,
				MinScore:          0,
				MaxScore:          1000,
			}
			e := newEngine(map[string][]model.Event{
				"at":   eventsAt("at", model.EventSave, 10, time.Hour),
				"past": eventsAt("past", model.EventSave, 20, time.Hour),
			}, quality.WithConfig(plain))
			at := e.For(ctx, "at")
			past := e.For(ctx, "past")

			Convey("Then extra positives contribute at the reduced rate", func() {
				So(at.Score, ShouldAlmostEqual, 10, 1e-9)
				So(past.Score, ShouldAlmostEqual, 15, 1e-9)
			})
		})

		Convey("When prompt feedback is mixed", func() {
			evs := []model.Event{
				{EventID: "f1", Type: model.EventPromptFeedback, Feedback: model.FeedbackWorked, IdeaID: "mixed", TS: testNow.Add(-time.Hour)},
				{EventID: "f2", Type: model.EventPromptFeedback, Feedback: model.FeedbackWorked, IdeaID: "mixed", TS: testNow.Add(-time.Hour)},
				{EventID: "f3", Type: model.EventPromptFeedback, Feedback: model.FeedbackWorked, IdeaID: "mixed", TS: testNow.Add(-time.Hour)},
				{EventID: "f4", Type: model.EventPromptFeedback, Feedback: model.FeedbackDidntWork, FeedbackReason: "needs_update", IdeaID: "mixed", TS: testNow.Add(-time.Hour)},
			}
			s := newEngine(map[string][]model.Event{"mixed": evs}).For(ctx, "mixed")

			Convey("Then the didnt-work rate reflects the feedback split", func() {
				So(s.DidntWorkRate, ShouldAlmostEqual, 0.25, 1e-9)
				So(s.PositiveSignals, ShouldEqual, 3)
				So(s.NegativeSignals, ShouldEqual, 1)
			})
		})

		Convey("When an idea only collects comments", func() {
			s := newEngine(map[string][]model.Event{
				"chatty": eventsAt("chatty", model.EventComment, 10, time.Hour),
			}).For(ctx, "chatty")

			Convey("Then the score is unmoved", func() {
				So(s.Score, ShouldEqual, cfg.Baseline)
				So(s.PositiveSignals, ShouldEqual, 0)
				So(s.NegativeSignals, ShouldEqual, 0)
			})
		})

		Convey("When the same idea is scored twice", func() {
			e := newEngine(map[string][]model.Event{
				"stable": eventsAt("stable", model.EventBuild, 7, 36*time.Hour),
			})

			Convey("Then the result is bit-identical", func() {
				So(e.For(ctx, "stable"), ShouldResemble, e.For(ctx, "stable"))
			})
		})
	})
}
