// Package quality computes the invisible per-idea score that feeds ranking
// and trust: baseline plus decayed positive/negative deltas, with
// saturation on runaway popularity and a momentum boost for items trending
// inside a short recent window.
package quality

import (
	"context"
	"math"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/pkg/metrics"
)

// Config holds the tunables of the quality formula.
type Config struct {
	// Baseline is the starting score; new ideas are not penalized for a
	// lack of data.
	Baseline float64 `koanf:"baseline"`

	// Deltas applied per positive/negative signal before decay.
	PositiveDelta float64 `koanf:"positive_delta"`
	NegativeDelta float64 `koanf:"negative_delta"`

	// HalfLifeDays controls the exponential age decay of contributions.
	HalfLifeDays float64 `koanf:"half_life_days"`

	// After SaturationCount positive signals, further positives contribute
	// at SaturationRate.
	SaturationCount int     `koanf:"saturation_count"`
	SaturationRate  float64 `koanf:"saturation_rate"`

	// Momentum: when at least MomentumMinEvents land inside the window,
	// contributions from the window are multiplied by MomentumMultiplier.
	MomentumWindowHours float64 `koanf:"momentum_window_hours"`
	MomentumMinEvents   int     `koanf:"momentum_min_events"`
	MomentumMultiplier  float64 `koanf:"momentum_multiplier"`

	// Final clamp range.
	MinScore float64 `koanf:"min_score"`
	MaxScore float64 `koanf:"max_score"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Baseline:            50,
		PositiveDelta:       2,
		NegativeDelta:       3,
		HalfLifeDays:        30,
		SaturationCount:     50,
		SaturationRate:      0.3,
		MomentumWindowHours: 48,
		MomentumMinEvents:   5,
		MomentumMultiplier:  1.5,
		MinScore:            0,
		MaxScore:            100,
	}
}

// Score is an idea's computed quality.
type Score struct {
	Score           float64 `json:"score"`
	PositiveSignals int     `json:"positive_signals"`
	NegativeSignals int     `json:"negative_signals"`
	// DidntWorkRate is the share of prompt feedback reporting failure; a
	// transparency signal distinct from the opaque score.
	DidntWorkRate float64 `json:"didnt_work_rate"`
}

// EventSource supplies an idea's engagement history, oldest first.
type EventSource interface {
	EventsForIdea(ctx context.Context, ideaID string) []model.Event
}

// Engine computes quality as a pure projection of the event log.
type Engine struct {
	events EventSource
	cfg    Config
	now    func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig replaces the default formula constants.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates a quality engine reading from events.
func New(events EventSource, opts ...Option) *Engine {
	e := &Engine{
		events: events,
		cfg:    DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// For computes the quality score for ideaID. Ideas with no events sit at
// the baseline.
func (e *Engine) For(ctx context.Context, ideaID string) Score {
	metrics.RecordEngineComputation("quality")

	evs := e.events.EventsForIdea(ctx, ideaID)
	now := e.now()
	recentCutoff := now.Add(-time.Duration(e.cfg.MomentumWindowHours * float64(time.Hour)))

	// Momentum is decided over the whole window before applying deltas so
	// the boost covers every recent contribution.
	recentEvents := 0
	for _, ev := range evs {
		if !ev.TS.Before(recentCutoff) {
			recentEvents++
		}
	}
	momentum := recentEvents >= e.cfg.MomentumMinEvents

	var (
		delta            float64
		pos, neg         int
		fbTotal, fbNeg   int
		positivesApplied int
	)
	for _, ev := range evs {
		if ev.Type == model.EventPromptFeedback {
			switch ev.Feedback {
			case model.FeedbackWorked:
				fbTotal++
			case model.FeedbackDidntWork:
				fbTotal++
				fbNeg++
			}
		}

		var d float64
		switch {
		case ev.Positive():
			pos++
			positivesApplied++
			d = e.cfg.PositiveDelta
			if positivesApplied > e.cfg.SaturationCount {
				d *= e.cfg.SaturationRate
			}
		case ev.Negative():
			neg++
			d = -e.cfg.NegativeDelta
		default:
			// Comments and unknown types carry no quality signal.
			continue
		}

		d *= e.decay(now.Sub(ev.TS))
		if momentum && !ev.TS.Before(recentCutoff) {
			d *= e.cfg.MomentumMultiplier
		}
		delta += d
	}

	score := math.Max(e.cfg.MinScore, math.Min(e.cfg.MaxScore, e.cfg.Baseline+delta))
	rate := 0.0
	if fbTotal > 0 {
		rate = float64(fbNeg) / float64(fbTotal)
	}
	return Score{
		Score:           score,
		PositiveSignals: pos,
		NegativeSignals: neg,
		DidntWorkRate:   rate,
	}
}

// decay returns the exponential age weight for a contribution.
func (e *Engine) decay(age time.Duration) float64 {
	if age <= 0 || e.cfg.HalfLifeDays <= 0 {
		return 1
	}
	halfLife := e.cfg.HalfLifeDays * 24
	return math.Exp2(-age.Hours() / halfLife)
}
