// Package ranking orders feed candidates by a weighted blend of relevance,
// freshness, quality, and exploration signals. The ranker is pure: it never
// touches storage and is fully deterministic for a given candidate
// snapshot.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/ideastack/ember/internal/domain/model"
)

// Weights is one weight vector over the four component signals.
type Weights struct {
	Relevance   float64 `koanf:"relevance"`
	Freshness   float64 `koanf:"freshness"`
	Quality     float64 `koanf:"quality"`
	Exploration float64 `koanf:"exploration"`
}

// Config holds the tunables of the ranking formula.
type Config struct {
	// Authenticated favors relevance; Anonymous redistributes that weight
	// onto quality and freshness since no relevance signal exists.
	Authenticated Weights `koanf:"authenticated"`
	Anonymous     Weights `koanf:"anonymous"`

	// FreshnessHalfLifeHours drives the exponential publish-time decay.
	FreshnessHalfLifeHours float64 `koanf:"freshness_half_life_hours"`

	// Exploration boosts, mutually exclusive with newly-published taking
	// priority over under-exposed.
	RecencyWindowHours float64 `koanf:"recency_window_hours"`
	UnderExposedViews  int     `koanf:"under_exposed_views"`
	NewBoost           float64 `koanf:"new_boost"`
	UnderExposedBoost  float64 `koanf:"under_exposed_boost"`
	DefaultBoost       float64 `koanf:"default_boost"`

	// Relevance components; their sum is capped at 1.
	CategoryMatch float64 `koanf:"category_match"`
	SkillMatch    float64 `koanf:"skill_match"`
	FollowBoost   float64 `koanf:"follow_boost"`

	// MaxQuality normalizes candidate quality scores to [0,1].
	MaxQuality float64 `koanf:"max_quality"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Authenticated:          Weights{Relevance: 0.40, Freshness: 0.20, Quality: 0.30, Exploration: 0.10},
		Anonymous:              Weights{Relevance: 0, Freshness: 0.30, Quality: 0.50, Exploration: 0.20},
		FreshnessHalfLifeHours: 48,
		RecencyWindowHours:     48,
		UnderExposedViews:      50,
		NewBoost:               1.0,
		UnderExposedBoost:      0.8,
		DefaultBoost:           0.2,
		CategoryMatch:          0.5,
		SkillMatch:             0.3,
		FollowBoost:            0.4,
		MaxQuality:             100,
	}
}

// Ranker orders feed candidates.
type Ranker struct {
	cfg Config
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithConfig replaces the default ranking constants.
func WithConfig(cfg Config) Option {
	return func(r *Ranker) { r.cfg = cfg }
}

// New creates a Ranker.
func New(opts ...Option) *Ranker {
	r := &Ranker{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns candidates ordered best-first. A nil viewer selects the
// anonymous weight profile. The sort is stable and ties break toward the
// more recently published candidate.
func (r *Ranker) Rank(candidates []model.FeedCandidate, viewer *model.Viewer, now time.Time) []model.FeedCandidate {
	w := r.cfg.Anonymous
	if viewer != nil {
		w = r.cfg.Authenticated
	}

	type scored struct {
		c model.FeedCandidate
		s float64
	}
	items := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, scored{c: c, s: r.Score(c, viewer, now, w)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].s != items[j].s {
			return items[i].s > items[j].s
		}
		return items[i].c.PublishedAt.After(items[j].c.PublishedAt)
	})

	out := make([]model.FeedCandidate, 0, len(items))
	for _, it := range items {
		out = append(out, it.c)
	}
	return out
}

// Score computes the combined ranking score of one candidate under the
// given weight vector. Exposed for tests asserting concrete orderings.
func (r *Ranker) Score(c model.FeedCandidate, viewer *model.Viewer, now time.Time, w Weights) float64 {
	rel := 0.0
	if viewer != nil {
		rel = r.relevance(c, viewer)
	}
	fresh := r.freshness(now.Sub(c.PublishedAt))
	q := clamp01(c.QualityScore / r.cfg.MaxQuality)
	explore := r.exploration(c, now)
	return w.Relevance*rel + w.Freshness*fresh + w.Quality*q + w.Exploration*explore
}

// relevance measures the overlap between the candidate and the viewer's
// interests and follow graph, capped at 1.
func (r *Ranker) relevance(c model.FeedCandidate, v *model.Viewer) float64 {
	interests := make(map[string]bool, len(v.Interests))
	for _, in := range v.Interests {
		interests[in] = true
	}

	var score float64
	if c.Category != "" && interests[c.Category] {
		score += r.cfg.CategoryMatch
	}
	if len(c.Skills) > 0 {
		matched := 0
		for _, s := range c.Skills {
			if interests[s] {
				matched++
			}
		}
		score += r.cfg.SkillMatch * float64(matched) / float64(len(c.Skills))
	}
	for _, f := range v.Following {
		if f == c.AuthorID {
			score += r.cfg.FollowBoost
			break
		}
	}
	return clamp01(score)
}

// freshness decays exponentially with age at the configured half-life.
func (r *Ranker) freshness(age time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	if r.cfg.FreshnessHalfLifeHours <= 0 {
		return 0
	}
	return math.Exp2(-age.Hours() / r.cfg.FreshnessHalfLifeHours)
}

// exploration boosts newly published or under-exposed candidates. The two
// boosts are mutually exclusive; newly-published wins.
func (r *Ranker) exploration(c model.FeedCandidate, now time.Time) float64 {
	if now.Sub(c.PublishedAt).Hours() <= r.cfg.RecencyWindowHours {
		return r.cfg.NewBoost
	}
	if c.ViewCount < r.cfg.UnderExposedViews {
		return r.cfg.UnderExposedBoost
	}
	return r.cfg.DefaultBoost
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
