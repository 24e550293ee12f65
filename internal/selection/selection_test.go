package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuichess/internal/model"
)

func perfWith(stats map[string]model.PuzzleStat) model.PerformanceModel {
	m := model.NewPerformanceModel()
	for id, st := range stats {
		m.Puzzles[id] = st
		m.TotalCorrect += st.Correct
		m.TotalWrong += st.Wrong
	}
	return m
}

func TestRawWeight(t *testing.T) {
	assert.Equal(t, 1.0, RawWeight(model.PuzzleStat{}))
	assert.InDelta(t, 1+9.0/11.0, RawWeight(model.PuzzleStat{Correct: 1, Wrong: 9}), 1e-12)
	assert.Greater(t, RawWeight(model.PuzzleStat{Correct: 10}), 0.0)
	assert.Equal(t, 1.0, RawWeight(model.PuzzleStat{Correct: 10}))
	assert.Less(t, RawWeight(model.PuzzleStat{Wrong: 1000000}), 2.0)
}

func TestRawWeightMonotonicInWrongRate(t *testing.T) {
	prev := 0.0
	for wrong := 0; wrong <= 10; wrong++ {
		w := RawWeight(model.PuzzleStat{Correct: 10 - wrong, Wrong: wrong})
		assert.Greater(t, w, prev-1e-12)
		prev = w
	}
}

func TestComputeWeightsPositiveAndNormalized(t *testing.T) {
	perf := perfWith(map[string]model.PuzzleStat{
		"a": {Correct: 5},
		"b": {Wrong: 3},
		"c": {Correct: 2, Wrong: 2},
	})
	cases := [][]string{
		{"a"},
		{"a", "b"},
		{"a", "b", "c", "unseen"},
		{"x", "y", "z"},
	}
	for _, ids := range cases {
		weights := ComputeWeights(ids, perf)
		require.Len(t, weights, len(ids))
		sum := 0.0
		for _, w := range weights {
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "ids %v", ids)
	}
}

func TestComputeWeightsProportions(t *testing.T) {
	perf := perfWith(map[string]model.PuzzleStat{"weak": {Correct: 1, Wrong: 9}})
	weights := ComputeWeights([]string{"fresh", "weak"}, perf)
	raw := 1 + 9.0/11.0
	assert.InDelta(t, 1/(1+raw), weights[0], 1e-12)
	assert.InDelta(t, raw/(1+raw), weights[1], 1e-12)
}

func TestSelectWeightedBoundaries(t *testing.T) {
	ids := []string{"a", "b", "c"}
	weights := ComputeWeights(ids, model.NewPerformanceModel())

	assert.Equal(t, "a", SelectWeighted(ids, weights, 0))
	assert.Equal(t, "c", SelectWeighted(ids, weights, math.Nextafter(1, 0)))
	assert.Equal(t, "b", SelectWeighted(ids, weights, 0.5))
}

func TestSelectWeightedFallsBackToLast(t *testing.T) {
	ids := []string{"a", "b"}
	// Weights that under-sum as accumulated rounding would.
	weights := []float64{0.4999999, 0.4999999}
	assert.Equal(t, "b", SelectWeighted(ids, weights, 0.99999999))
}

func TestSelectWeightedDeterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	perf := perfWith(map[string]model.PuzzleStat{"c": {Wrong: 4}})
	weights := ComputeWeights(ids, perf)
	for _, r := range []float64{0, 0.1, 0.33, 0.5, 0.77, 0.999} {
		assert.Equal(t, SelectWeighted(ids, weights, r), SelectWeighted(ids, ComputeWeights(ids, perf), r))
	}
}

func TestSelectorPickEmpty(t *testing.T) {
	_, err := NewWithSeed(1).Pick(nil, model.NewPerformanceModel())
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestSelectorSameSeedSameSequence(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	perf := model.NewPerformanceModel()
	s1 := NewWithSeed(42)
	s2 := NewWithSeed(42)
	for i := 0; i < 50; i++ {
		a, err := s1.Pick(ids, perf)
		require.NoError(t, err)
		b, err := s2.Pick(ids, perf)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSelectorFavorsWeakPuzzles(t *testing.T) {
	ids := []string{"fresh", "weak"}
	perf := perfWith(map[string]model.PuzzleStat{"weak": {Correct: 1, Wrong: 9}})
	raw := 1 + 9.0/11.0
	expected := raw / (1 + raw)

	const trials = 200000
	s := NewWithSeed(7)
	weak := 0
	for i := 0; i < trials; i++ {
		id, err := s.Pick(ids, perf)
		require.NoError(t, err)
		if id == "weak" {
			weak++
		}
	}
	got := float64(weak) / trials
	assert.InDelta(t, expected, got, 0.01)
	assert.Greater(t, weak, trials-weak)
}

func TestSelectorChiSquareUniformWhenUnseen(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	perf := model.NewPerformanceModel()
	const trials = 40000
	counts := map[string]int{}
	s := NewWithSeed(99)
	for i := 0; i < trials; i++ {
		id, err := s.Pick(ids, perf)
		require.NoError(t, err)
		counts[id]++
	}
	expected := float64(trials) / float64(len(ids))
	chi := 0.0
	for _, id := range ids {
		d := float64(counts[id]) - expected
		chi += d * d / expected
	}
	// 3 degrees of freedom, p = 0.001.
	assert.Less(t, chi, 16.27)
}
