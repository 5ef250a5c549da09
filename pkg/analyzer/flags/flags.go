// Package flags marks metric values as relatively high or low within their
// population, using quartile thresholds.
package flags

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/stats"
)

// Mode says which rule a threshold applies.
type Mode string

const (
	// ModeQuartile flags values at or beyond Q1/Q3.
	ModeQuartile Mode = "quartile"
	// ModeExtremes flags only the global maximum and minimum because Q1 == Q3.
	ModeExtremes Mode = "extremes"
	// ModeConstant flags nothing because every value is equal.
	ModeConstant Mode = "constant"
	// ModeEmpty flags nothing because the population has no members.
	ModeEmpty Mode = "empty"
)

// Threshold holds the population statistics of one metric.
type Threshold struct {
	Q1   float64 `json:"q1" toon:"q1"`
	Q3   float64 `json:"q3" toon:"q3"`
	Min  float64 `json:"min" toon:"min"`
	Max  float64 `json:"max" toon:"max"`
	Mode Mode    `json:"mode" toon:"mode"`
}

// Compute derives the threshold of a metric from every population value.
func Compute(values []float64) Threshold {
	if len(values) == 0 {
		return Threshold{Mode: ModeEmpty}
	}
	q1, q3 := stats.Quartiles(values)
	t := Threshold{
		Q1:  q1,
		Q3:  q3,
		Min: stats.Min(values),
		Max: stats.Max(values),
	}
	switch {
	case t.Max == t.Min:
		t.Mode = ModeConstant
	case q1 == q3:
		t.Mode = ModeExtremes
	default:
		t.Mode = ModeQuartile
	}
	return t
}

// Up reports whether v is flagged as relatively high.
func (t Threshold) Up(v float64) bool {
	switch t.Mode {
	case ModeQuartile:
		return v >= t.Q3
	case ModeExtremes:
		return v == t.Max
	default:
		return false
	}
}

// Down reports whether v is flagged as relatively low.
func (t Threshold) Down(v float64) bool {
	switch t.Mode {
	case ModeQuartile:
		return v <= t.Q1
	case ModeExtremes:
		return v == t.Min
	default:
		return false
	}
}

// Flag is the pair of relative flags of one value.
type Flag struct {
	Up   bool `json:"up" toon:"up"`
	Down bool `json:"down" toon:"down"`
}

// Of returns both flags of v.
func (t Threshold) Of(v float64) Flag {
	return Flag{Up: t.Up(v), Down: t.Down(v)}
}

// Uniqueness returns how far v sits above Q3 relative to the Q3..max span,
// clamped to [0, 1]. Values at or below Q3 score 0; when Q3 equals the maximum
// any value above Q3 scores 1.
func (t Threshold) Uniqueness(v float64) float64 {
	if t.Mode == ModeEmpty || v <= t.Q3 {
		return 0
	}
	if t.Q3 == t.Max {
		return 1
	}
	u := (v - t.Q3) / (t.Max - t.Q3)
	switch {
	case u < 0:
		return 0
	case u > 1:
		return 1
	default:
		return u
	}
}
