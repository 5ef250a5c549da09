package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuartiles(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q1, q3 float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{5}, 5, 5},
		{"four", []float64{4, 1, 3, 2}, 1.75, 3.25},
		{"five", []float64{1, 2, 3, 4, 5}, 2, 4},
		{"six", []float64{1, 1, 2, 2, 3, 5}, 1.25, 2.75},
		{"ties", []float64{0, 0, 0, 1}, 0, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q3 := Quartiles(tt.values)
			assert.InDelta(t, tt.q1, q1, 1e-12)
			assert.InDelta(t, tt.q3, q3, 1e-12)
		})
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	assert.Equal(t, 10.0, Quantile(values, 0))
	assert.Equal(t, 40.0, Quantile(values, 1))
	assert.Equal(t, 25.0, Quantile(values, 0.5))
	assert.Equal(t, 40.0, Quantile(values, 2), "p is clamped")
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestQuantile_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}

	Quantile(values, 0.5)
	Quartiles(values)

	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 7.0, Max([]float64{3, 7, -1}))
	assert.Equal(t, -1.0, Min([]float64{3, 7, -1}))
	assert.Zero(t, Max(nil))
	assert.Zero(t, Min(nil))
}
