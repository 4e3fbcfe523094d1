package services

import (
	"math/rand/v2"
	"sort"
)

// Default exploration policy.
const (
	DefaultEpsilon       = 0.15
	DefaultExploreWindow = 20
)

// RandomSource is the randomness used by the selector. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level generator of math/rand/v2.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// Selection is the outcome of one epsilon-greedy draw.
type Selection struct {
	ScoredLink
	Explored bool
}

// Selector picks one candidate with an epsilon-greedy policy: with probability
// epsilon it picks uniformly among the top window candidates, otherwise the best one.
type Selector struct {
	epsilon float64
	window  int
	rnd     RandomSource
}

// NewSelector builds a selector. Out-of-range arguments fall back to the defaults;
// a nil source uses the global generator.
func NewSelector(epsilon float64, window int, rnd RandomSource) *Selector {
	if epsilon < 0 || epsilon > 1 {
		epsilon = DefaultEpsilon
	}
	if window <= 0 {
		window = DefaultExploreWindow
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Selector{epsilon: epsilon, window: window, rnd: rnd}
}

// Select returns the chosen candidate, or false when there is none.
// The input slice is not modified.
func (s *Selector) Select(candidates []ScoredLink) (Selection, bool) {
	if len(candidates) == 0 {
		return Selection{}, false
	}
	ranked := make([]ScoredLink, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if s.rnd.Float64() < s.epsilon {
		top := min(s.window, len(ranked))
		return Selection{ScoredLink: ranked[s.rnd.IntN(top)], Explored: true}, true
	}
	return Selection{ScoredLink: ranked[0]}, true
}
