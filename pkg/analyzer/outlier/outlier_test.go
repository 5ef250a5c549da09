package outlier

import (
	"testing"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/flags"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCounts(t *testing.T) {
	hits := [][]bool{
		{true, false, true},
		{true, false, false},
		{false, false, true},
	}

	assert.Equal(t, []int{2, 0, 2}, Counts(hits, 3))
	assert.Equal(t, []int{0, 0}, Counts(nil, 2))
}

func TestPatternScore(t *testing.T) {
	tests := []struct {
		name   string
		hits   []bool
		counts []int
		want   float64
	}{
		{"nothing triggered", []bool{false, false}, []int{3, 1}, 0},
		{"unique pattern weighs one", []bool{false, true}, []int{3, 1}, 1},
		{"shared pattern", []bool{true, false}, []int{4, 1}, 0.25},
		{"both", []bool{true, true}, []int{2, 1}, 1.5},
		{"zero count ignored", []bool{true}, []int{0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PatternScore(tt.hits, tt.counts), 1e-12)
		})
	}
}

func TestUniqueness_CapsEachMetric(t *testing.T) {
	th := []flags.Threshold{
		flags.Compute([]float64{1, 2, 3, 4, 5}),
		flags.Compute([]float64{1, 2, 3, 4, 5}),
		flags.Compute([]float64{1, 2, 3, 4, 5}),
	}

	// 5 -> u=1 capped, 4.1 -> u=0.1, 2 -> 0
	got := Uniqueness([]float64{5, 4.1, 2}, th, DefaultTau)

	assert.InDelta(t, 0.3+0.1, got, 1e-9)
}

func TestWeights_Score(t *testing.T) {
	w := DefaultWeights()

	assert.InDelta(t, 1.0+0.3*0.5, w.Score(1, 0.5), 1e-12)
	assert.Equal(t, 0.0, w.Score(0, 0))
}

func TestRank(t *testing.T) {
	entries := []Entry{
		{ID: "c", Score: 1},
		{ID: "a", Score: 0.5},
		{ID: "b", Score: 1},
		{ID: "d", Score: 2},
	}

	Rank(entries)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids)
}

func TestScore_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("uniqueness contribution is within [0, τ·metrics]", prop.ForAll(
		func(values []float64) bool {
			th := make([]flags.Threshold, len(values))
			for j := range th {
				th[j] = flags.Compute(values)
			}
			uni := Uniqueness(values, th, DefaultTau)
			return uni >= 0 && uni <= DefaultTau*float64(len(values))+1e-12
		},
		gen.SliceOf(gen.Float64Range(0, 1000)),
	))

	properties.Property("score is never negative", prop.ForAll(
		func(hits []bool, uni float64) bool {
			counts := Counts([][]bool{hits}, len(hits))
			return DefaultWeights().Score(PatternScore(hits, counts), uni) >= 0
		},
		gen.SliceOf(gen.Bool()),
		gen.Float64Range(0, 10),
	))

	properties.TestingRun(t)
}
