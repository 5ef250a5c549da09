// Package outlier turns pattern hits and metric uniqueness into a single
// ranking score per entity.
package outlier

import (
	"math"
	"sort"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/flags"
)

// Default weights.
const (
	DefaultTau    = 0.30
	DefaultLambda = 0.30
)

// Weights controls how uniqueness contributes to the final score.
type Weights struct {
	// Tau caps the contribution of any single metric to UNI.
	Tau float64 `json:"tau" toml:"tau"`
	// Lambda scales UNI before it is added to OS^P.
	Lambda float64 `json:"lambda" toml:"lambda"`
}

// DefaultWeights returns τ = λ = 0.30.
func DefaultWeights() Weights {
	return Weights{Tau: DefaultTau, Lambda: DefaultLambda}
}

// Counts returns, for every pattern column, how many entities trigger it.
// hits is indexed [entity][pattern]; every row must have width columns.
func Counts(hits [][]bool, width int) []int {
	counts := make([]int, width)
	for _, row := range hits {
		for j, hit := range row {
			if hit {
				counts[j]++
			}
		}
	}
	return counts
}

// PatternScore is OS^P: the sum of 1/count(p) over triggered patterns. Patterns
// with a zero count contribute nothing.
func PatternScore(hits []bool, counts []int) float64 {
	var s float64
	for j, hit := range hits {
		if hit && counts[j] > 0 {
			s += 1 / float64(counts[j])
		}
	}
	return s
}

// Uniqueness is UNI: the sum over metrics of min(tau, u_m(value)).
func Uniqueness(values []float64, thresholds []flags.Threshold, tau float64) float64 {
	var s float64
	for j, v := range values {
		s += math.Min(tau, thresholds[j].Uniqueness(v))
	}
	return s
}

// Score combines both parts: OS^P + λ·UNI.
func (w Weights) Score(osp, uni float64) float64 {
	return osp + w.Lambda*uni
}

// Entry is one ranked entity.
type Entry struct {
	ID    string  `json:"id" toon:"id"`
	Name  string  `json:"name" toon:"name"`
	Score float64 `json:"score" toon:"score"`
}

// Rank sorts entries by Score descending, breaking ties by ascending id.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
}
