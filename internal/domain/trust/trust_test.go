package trust_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/internal/domain/quality"
	"github.com/ideastack/ember/internal/domain/trust"
	. "github.com/smartystreets/goconvey/convey"
)

type stubIdeas struct {
	byAuthor map[string][]model.Idea
	err      error
}

func (s stubIdeas) IdeasByAuthor(_ context.Context, authorID string) ([]model.Idea, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byAuthor[authorID], nil
}

type stubQuality struct {
	scores map[string]quality.Score
}

func (s stubQuality) For(_ context.Context, ideaID string) quality.Score {
	return s.scores[ideaID]
}

// authorWith registers n ideas for author with uniform quality and rate.
func authorWith(ideas map[string][]model.Idea, scores map[string]quality.Score, author string, n int, score, rate float64) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-idea-%d", author, i)
		ideas[author] = append(ideas[author], model.Idea{
			ID: id, AuthorID: author, PublishedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		})
		scores[id] = quality.Score{Score: score, DidntWorkRate: rate}
	}
}

func TestTrustEngine_For(t *testing.T) {
	ctx := context.Background()
	cfg := trust.DefaultConfig()

	ideas := make(map[string][]model.Idea)
	scores := make(map[string]quality.Score)
	authorWith(ideas, scores, "strong", 4, 85, 0.05)
	authorWith(ideas, scores, "bad", 3, 20, 0)
	authorWith(ideas, scores, "flaky", 3, 42, 0.7)

	e := trust.New(stubIdeas{byAuthor: ideas}, stubQuality{scores: scores})

	Convey("Given a trust engine over idea qualities", t, func() {
		Convey("When an author has no ideas yet", func() {
			tr := e.For(ctx, "newcomer")

			Convey("Then trust starts at the initial value with no gates", func() {
				So(tr.Score, ShouldEqual, cfg.Initial)
				So(tr.RequiresModeration, ShouldBeFalse)
				So(tr.ReducedVisibility, ShouldBeFalse)
			})
		})

		Convey("When the idea list cannot be read", func() {
			broken := trust.New(stubIdeas{err: errors.New("store offline")}, stubQuality{})
			tr := broken.For(ctx, "anyone")

			Convey("Then trust degrades to the initial value", func() {
				So(tr.Score, ShouldEqual, cfg.Initial)
				So(tr.RequiresModeration, ShouldBeFalse)
			})
		})

		Convey("When every idea scores well", func() {
			tr := e.For(ctx, "strong")

			Convey("Then trust rises above the initial value with no gates", func() {
				So(tr.Score, ShouldBeGreaterThan, cfg.Initial)
				So(tr.RequiresModeration, ShouldBeFalse)
				So(tr.ReducedVisibility, ShouldBeFalse)
			})
		})

		Convey("When every idea clusters at very low quality", func() {
			tr := e.For(ctx, "bad")

			Convey("Then the author crosses the moderation gate", func() {
				So(tr.Score, ShouldBeLessThanOrEqualTo, cfg.ModerationThreshold)
				So(tr.RequiresModeration, ShouldBeTrue)
				So(tr.ReducedVisibility, ShouldBeTrue)
			})
		})

		Convey("When ideas hover near the midpoint but feedback says they fail", func() {
			tr := e.For(ctx, "flaky")

			Convey("Then visibility is reduced without full moderation", func() {
				// 70 + (42-50)*0.6 - 0.7*40 = 37.2
				So(tr.Score, ShouldAlmostEqual, 37.2, 0.01)
				So(tr.ReducedVisibility, ShouldBeTrue)
				So(tr.RequiresModeration, ShouldBeFalse)
			})
		})

		Convey("When the same author is scored twice", func() {
			Convey("Then the result is bit-identical", func() {
				So(e.For(ctx, "strong"), ShouldResemble, e.For(ctx, "strong"))
			})
		})
	})
}
