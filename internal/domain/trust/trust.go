// Package trust derives the per-author moderation signal from the quality
// outcomes of the author's ideas.
package trust

import (
	"context"
	"math"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/internal/domain/quality"
	"github.com/ideastack/ember/pkg/metrics"
)

// Config holds the tunables of the trust formula.
type Config struct {
	// Initial is the starting trust for authors without signal.
	Initial float64 `koanf:"initial"`

	// Average idea quality moves trust around the midpoint at the
	// configured multiplier.
	QualityMidpoint   float64 `koanf:"quality_midpoint"`
	QualityMultiplier float64 `koanf:"quality_multiplier"`

	// DidntWorkMultiplier penalizes the average didnt-work rate across the
	// author's ideas.
	DidntWorkMultiplier float64 `koanf:"didnt_work_multiplier"`

	// Ideas scoring below LowQualityScore count toward a clustering
	// penalty weighted by LowQualityMultiplier.
	LowQualityScore      float64 `koanf:"low_quality_score"`
	LowQualityMultiplier float64 `koanf:"low_quality_multiplier"`

	// Final clamp range.
	MinScore float64 `koanf:"min_score"`
	MaxScore float64 `koanf:"max_score"`

	// Gates. ReducedVisibility triggers at a less severe score than
	// moderation, so its threshold is the higher of the two.
	ModerationThreshold        float64 `koanf:"moderation_threshold"`
	ReducedVisibilityThreshold float64 `koanf:"reduced_visibility_threshold"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Initial:                    70,
		QualityMidpoint:            50,
		QualityMultiplier:          0.6,
		DidntWorkMultiplier:        40,
		LowQualityScore:            40,
		LowQualityMultiplier:       35,
		MinScore:                   0,
		MaxScore:                   100,
		ModerationThreshold:        25,
		ReducedVisibilityThreshold: 40,
	}
}

// Trust is an author's computed moderation signal.
type Trust struct {
	Score              float64 `json:"score"`
	RequiresModeration bool    `json:"requires_moderation"`
	ReducedVisibility  bool    `json:"reduced_visibility"`
}

// IdeaSource lists an author's published ideas.
type IdeaSource interface {
	IdeasByAuthor(ctx context.Context, authorID string) ([]model.Idea, error)
}

// QualitySource scores a single idea.
type QualitySource interface {
	For(ctx context.Context, ideaID string) quality.Score
}

// Engine computes trust as a pure aggregation over idea qualities.
type Engine struct {
	ideas   IdeaSource
	quality QualitySource
	cfg     Config
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig replaces the default formula constants.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// New creates a trust engine over the given idea and quality sources.
func New(ideas IdeaSource, q QualitySource, opts ...Option) *Engine {
	e := &Engine{
		ideas:   ideas,
		quality: q,
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// For computes the trust signal for authorID. Authors with no ideas, or
// whose idea list cannot be read, sit at the initial trust value.
func (e *Engine) For(ctx context.Context, authorID string) Trust {
	metrics.RecordEngineComputation("trust")

	ideas, err := e.ideas.IdeasByAuthor(ctx, authorID)
	if err != nil || len(ideas) == 0 {
		return e.gate(e.cfg.Initial)
	}

	var qualitySum, rateSum float64
	low := 0
	for _, idea := range ideas {
		q := e.quality.For(ctx, idea.ID)
		qualitySum += q.Score
		rateSum += q.DidntWorkRate
		if q.Score < e.cfg.LowQualityScore {
			low++
		}
	}

	n := float64(len(ideas))
	avgQuality := qualitySum / n
	avgRate := rateSum / n
	lowShare := float64(low) / n

	score := e.cfg.Initial +
		(avgQuality-e.cfg.QualityMidpoint)*e.cfg.QualityMultiplier -
		avgRate*e.cfg.DidntWorkMultiplier -
		lowShare*e.cfg.LowQualityMultiplier
	return e.gate(score)
}

// gate clamps the score and derives the two independent threshold booleans.
func (e *Engine) gate(score float64) Trust {
	score = math.Max(e.cfg.MinScore, math.Min(e.cfg.MaxScore, score))
	return Trust{
		Score:              score,
		RequiresModeration: score <= e.cfg.ModerationThreshold,
		ReducedVisibility:  score <= e.cfg.ReducedVisibilityThreshold,
	}
}
