// internal/rng/rng.go
//
// Random collaborator for the engine. The engine itself never touches a
// random number generator directly; it is handed a Source so runs can be
// made deterministic (tests, daily mode) or fully random (normal play).

package rng

import (
	"math/rand"
)

// Source is the randomness interface consumed by piece generation and the
// quiz decoy picker.
type Source interface {
	// WeightedChoice picks an index into items proportionally to weights.
	// len(items) must equal len(weights); all weights must be >= 0.
	WeightedChoice(items []string, weights []int) string

	// Choice picks a uniformly random element of items.
	Choice(items []string) string

	// RangeInt returns a uniform int in [min, max).
	RangeInt(min, max int) int
}

// mathSource implements Source over math/rand. Not safe for concurrent use;
// each run owns its own Source behind the run mutex.
type mathSource struct {
	r *rand.Rand
}

// NewSource returns a Source seeded with the given value. Equal seeds yield
// equal draw sequences.
func NewSource(seed int64) Source {
	return &mathSource{r: rand.New(rand.NewSource(seed))}
}

func (s *mathSource) WeightedChoice(items []string, weights []int) string {
	if len(items) == 0 {
		return ""
	}
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return items[s.r.Intn(len(items))]
	}
	n := s.r.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return items[i]
		}
		n -= w
	}
	return items[len(items)-1]
}

func (s *mathSource) Choice(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[s.r.Intn(len(items))]
}

func (s *mathSource) RangeInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.r.Intn(max-min)
}
