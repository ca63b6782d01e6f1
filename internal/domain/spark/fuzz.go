package spark

import (
	"hash/fnv"
	"math"
)

// fuzz applies a small deterministic perturbation to the displayed integer
// so the exact formula parameters cannot be recovered by differential
// probing. The perturbation is seeded by a stable hash of the author id,
// never by the wall clock, so repeated queries stay reproducible. The
// result is clamped so fuzzing can never move the display across a tier
// boundary.
func (e *Engine) fuzz(authorID string, score float64, rep Reputation) int {
	if score <= 0 {
		return 0
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(authorID))
	// Map the hash onto [-1, 1).
	u := float64(h.Sum64()%2048)/1024 - 1

	display := math.Round(score * (1 + u*e.cfg.FuzzPercent))
	if display < rep.Tier.MinSpark {
		display = math.Ceil(rep.Tier.MinSpark)
	}
	if rep.NextTier != nil && display >= rep.NextTier.MinSpark {
		display = math.Ceil(rep.NextTier.MinSpark) - 1
	}
	if display < 0 {
		display = 0
	}
	return int(display)
}
