// Package spark computes an author's visible reputation from engagement
// history: weighted signals, a per-idea cap, velocity dampening,
// logarithmic scaling, tier lookup, and bounded display fuzzing.
package spark

import (
	"context"
	"math"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
	"github.com/ideastack/ember/pkg/metrics"
)

// Config holds the tunables of the reputation formula.
type Config struct {
	// Raw weight per qualifying signal.
	SaveWeight           float64 `koanf:"save_weight"`
	CopyWeight           float64 `koanf:"copy_weight"`
	BuildWeight          float64 `koanf:"build_weight"`
	WorkedFeedbackWeight float64 `koanf:"worked_feedback_weight"`

	// PerIdeaCap clamps each idea's weighted contribution before summing
	// across ideas. Breadth across many ideas beats one viral hit.
	PerIdeaCap float64 `koanf:"per_idea_cap"`

	// Velocity dampening: signal inside the rolling window beyond the
	// threshold contributes at the dampened rate. Resists burst gaming.
	VelocityWindowHours float64 `koanf:"velocity_window_hours"`
	VelocityThreshold   float64 `koanf:"velocity_threshold"`
	VelocityDampening   float64 `koanf:"velocity_dampening"`

	// Logarithmic scaling: spark = scale * log(1+raw) / log(base).
	LogBase  float64 `koanf:"log_base"`
	LogScale float64 `koanf:"log_scale"`

	// FuzzPercent bounds the deterministic display perturbation, e.g. 0.02
	// for plus or minus two percent.
	FuzzPercent float64 `koanf:"fuzz_percent"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SaveWeight:           3,
		CopyWeight:           2,
		BuildWeight:          5,
		WorkedFeedbackWeight: 4,
		PerIdeaCap:           60,
		VelocityWindowHours:  24,
		VelocityThreshold:    30,
		VelocityDampening:    0.25,
		LogBase:              2,
		LogScale:             12,
		FuzzPercent:          0.02,
	}
}

// Reputation is an author's computed, display-ready reputation.
type Reputation struct {
	Spark    int     `json:"spark"` // fuzzed display value
	Tier     Tier    `json:"tier"`
	NextTier *Tier   `json:"next_tier,omitempty"`
	Progress float64 `json:"progress"` // fraction toward NextTier, 1 at the top
}

// EventSource supplies an author's engagement history, oldest first.
type EventSource interface {
	EventsForAuthor(ctx context.Context, authorID string) []model.Event
}

// Engine computes reputation as a pure projection of the event log.
type Engine struct {
	events EventSource
	cfg    Config
	tiers  []Tier
	now    func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig replaces the default formula constants.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithTiers replaces the default tier ladder. Tiers must be ascending by
// minimum spark with the lowest at zero.
func WithTiers(tiers []Tier) Option {
	return func(e *Engine) {
		if len(tiers) > 0 {
			e.tiers = tiers
		}
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates a spark engine reading from events.
func New(events EventSource, opts ...Option) *Engine {
	e := &Engine{
		events: events,
		cfg:    DefaultConfig(),
		tiers:  DefaultTiers(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// For computes the reputation for authorID. Authors with no qualifying
// events get spark 0 and the lowest tier; that is not an error.
func (e *Engine) For(ctx context.Context, authorID string) Reputation {
	metrics.RecordEngineComputation("spark")

	evs := e.events.EventsForAuthor(ctx, authorID)
	raw := e.rawSignal(evs)
	score := e.scale(raw)
	rep := e.tierFor(score)
	rep.Spark = e.fuzz(authorID, score, rep)
	return rep
}

// rawSignal applies signal weights, the per-idea cap, and velocity
// dampening. The capped total is computed twice, with and without the
// events inside the rolling window; the window's share of the capped total
// is what gets dampened beyond the threshold. Dampening is monotonic as
// long as the multiplier stays in (0,1].
func (e *Engine) rawSignal(evs []model.Event) float64 {
	if len(evs) == 0 {
		return 0
	}
	cutoff := e.now().Add(-time.Duration(e.cfg.VelocityWindowHours * float64(time.Hour)))

	perIdeaAll := make(map[string]float64)
	perIdeaOld := make(map[string]float64)
	for _, ev := range evs {
		w := e.weight(ev)
		if w == 0 {
			continue
		}
		perIdeaAll[ev.IdeaID] += w
		if ev.TS.Before(cutoff) {
			perIdeaOld[ev.IdeaID] += w
		}
	}

	total := e.cappedSum(perIdeaAll)
	old := e.cappedSum(perIdeaOld)
	recent := total - old
	if recent <= e.cfg.VelocityThreshold {
		return total
	}
	excess := recent - e.cfg.VelocityThreshold
	return old + e.cfg.VelocityThreshold + excess*e.cfg.VelocityDampening
}

func (e *Engine) cappedSum(perIdea map[string]float64) float64 {
	var sum float64
	for _, v := range perIdea {
		sum += math.Min(v, e.cfg.PerIdeaCap)
	}
	return sum
}

// weight returns the raw spark weight for a single event; zero for
// non-qualifying signals.
func (e *Engine) weight(ev model.Event) float64 {
	switch ev.Type {
	case model.EventSave:
		return e.cfg.SaveWeight
	case model.EventCopy:
		return e.cfg.CopyWeight
	case model.EventBuild:
		return e.cfg.BuildWeight
	case model.EventPromptFeedback:
		if ev.Feedback == model.FeedbackWorked {
			return e.cfg.WorkedFeedbackWeight
		}
	}
	return 0
}

// scale maps the raw total through the configured logarithm so doubling the
// signal yields a strictly sub-linear increase.
func (e *Engine) scale(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	return e.cfg.LogScale * math.Log1p(raw) / math.Log(e.cfg.LogBase)
}

// tierFor selects the highest tier whose minimum is at or below score and
// fills in the next tier and the clamped progress fraction.
func (e *Engine) tierFor(score float64) Reputation {
	idx := 0
	for i, t := range e.tiers {
		if score >= t.MinSpark {
			idx = i
		}
	}
	rep := Reputation{Tier: e.tiers[idx], Progress: 1}
	if idx+1 < len(e.tiers) {
		next := e.tiers[idx+1]
		rep.NextTier = &next
		span := next.MinSpark - e.tiers[idx].MinSpark
		if span > 0 {
			rep.Progress = clamp01((score - e.tiers[idx].MinSpark) / span)
		}
	}
	return rep
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
