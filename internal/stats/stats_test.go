package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.values))
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMode(t *testing.T) {
	assert.Equal(t, 2.0, Mode([]float64{1, 2, 2, 3}))
	// Ties break toward the smallest value.
	assert.Equal(t, 1.0, Mode([]float64{2, 1, 2, 1}))
}

func TestStdDev(t *testing.T) {
	// Population std of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 4.0, Quantile(values, 1))
	assert.InDelta(t, 2.5, Quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 1.75, Quantile(values, 0.25), 1e-9)
}

func TestIQRBoundsFlagExtremeValue(t *testing.T) {
	lower, upper := IQRBounds([]float64{1, 2, 3, 1000})
	// 1000 sits outside the upper bound; the small values stay inside.
	assert.Greater(t, 1000.0, upper)
	assert.Less(t, lower, 1.0)
	assert.Greater(t, upper, 3.0)
}
