// Package selection draws puzzles with a bias toward weak performance.
package selection

import (
	"errors"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuichess/internal/model"
)

// ErrNoCandidates is returned when asked to pick from an empty set.
var ErrNoCandidates = errors.New("no candidate puzzles")

// RawWeight is 1 for an unseen puzzle and 1 + wrong/(total+1) otherwise,
// so it stays in [1, 2) and grows with the wrong rate.
func RawWeight(stat model.PuzzleStat) float64 {
	total := stat.Total()
	if total == 0 {
		return 1
	}
	return 1 + float64(stat.Wrong)/float64(total+1)
}

// ComputeWeights returns normalized weights aligned with ids.
func ComputeWeights(ids []string, perf model.PerformanceModel) []float64 {
	weights := make([]float64, len(ids))
	total := 0.0
	for i, id := range ids {
		w := RawWeight(perf.Puzzles[id])
		weights[i] = w
		total += w
	}
	if total == 0 {
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// SelectWeighted walks ids in order and returns the first whose cumulative
// weight reaches r. If rounding leaves r above the final sum, the last id is
// returned. ids must not be empty.
func SelectWeighted(ids []string, weights []float64, r float64) string {
	acc := 0.0
	for i, id := range ids {
		if i < len(weights) {
			acc += weights[i]
		}
		if r <= acc {
			return id
		}
	}
	return ids[len(ids)-1]
}

// Selector draws puzzle ids.
type Selector struct {
	rnd *rand.Rand
}

// New returns a Selector seeded with the current time.
func New() *Selector {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Selector with a fixed seed.
func NewWithSeed(seed int64) *Selector {
	return &Selector{rnd: rand.New(rand.NewSource(seed))}
}

// Pick draws one id from ids weighted by perf.
func (s *Selector) Pick(ids []string, perf model.PerformanceModel) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoCandidates
	}
	weights := ComputeWeights(ids, perf)
	return SelectWeighted(ids, weights, s.rnd.Float64()), nil
}
