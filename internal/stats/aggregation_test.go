package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanSkipsNaN(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, Mean([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()})))
}

func TestStdDevIsSample(t *testing.T) {
	t.Parallel()

	// sample sd of 2,4,4,4,5,5,7,9 is sqrt(32/7)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.True(t, math.IsNaN(StdDev([]float64{5})), "one day has no spread")
	assert.True(t, math.IsNaN(Variance([]float64{5, math.NaN()})))
}

func TestSum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6.0, Sum([]float64{1, 2, math.NaN(), 3}))
	assert.Equal(t, 0.0, Sum(nil))
}

func TestMedianAndQuantile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 3.0, Median([]float64{5, 3, 1}))
	assert.True(t, math.IsNaN(Median(nil)))

	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 5.0, Quantile(values, 1))
	assert.Equal(t, 2.0, Quantile(values, 0.25))
	assert.InDelta(t, 4.6, Quantile(values, 0.9), 1e-12)
}

func TestMinMaxCount(t *testing.T) {
	t.Parallel()

	values := []float64{3, math.NaN(), -1, 8}
	assert.Equal(t, -1.0, Min(values))
	assert.Equal(t, 8.0, Max(values))
	assert.Equal(t, 4.0, Count(values))
	assert.True(t, math.IsNaN(Max(nil)))
}
