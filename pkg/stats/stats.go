// Package stats provides statistical utility functions for analyzers.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Quantile returns the p-quantile (0 <= p <= 1) of values using linear
// interpolation between the closest ranks, the same estimator numpy and pandas
// use by default. values need not be sorted and are not modified.
// Returns 0 if values is empty.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

// Quartiles returns the 25th and 75th percentiles of values.
func Quartiles(values []float64) (q1, q3 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.75)
}

func quantileSorted(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return lerp(sorted[i], sorted[i+1], h-lo)
}

// lerp interpolates from the nearer endpoint so results match numpy bit for bit.
func lerp(a, b, t float64) float64 {
	if a == b {
		return a
	}
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

// Max returns the largest value, or 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}
