// Package stats holds the reductions used by per-day and per-subject aggregates.
// NaN inputs are skipped, so a missing duration never poisons a daily total.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Valid returns the non-NaN values
func Valid(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean calculates the arithmetic mean, NaN when there is nothing to average
func Mean(values []float64) float64 {
	v := Valid(values)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator).
// Fewer than two values give NaN.
func StdDev(values []float64) float64 {
	v := Valid(values)
	if len(v) < 2 {
		return math.NaN()
	}
	return stat.StdDev(v, nil)
}

// Variance calculates the sample variance, NaN for fewer than two values
func Variance(values []float64) float64 {
	v := Valid(values)
	if len(v) < 2 {
		return math.NaN()
	}
	return stat.Variance(v, nil)
}

// Sum adds the values; an empty or all-NaN input sums to 0
func Sum(values []float64) float64 {
	return floats.Sum(Valid(values))
}

// Median calculates the median value
func Median(values []float64) float64 {
	sorted := Valid(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Min returns the minimum value
func Min(values []float64) float64 {
	v := Valid(values)
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Min(v)
}

// Max returns the maximum value
func Max(values []float64) float64 {
	v := Valid(values)
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Max(v)
}

// Quantile calculates the q-th quantile (0 <= q <= 1) with linear interpolation
func Quantile(values []float64, q float64) float64 {
	sorted := Valid(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	q = math.Max(0, math.Min(1, q))
	sort.Float64s(sorted)

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Reducer collapses a group of values into one statistic
type Reducer func([]float64) float64

// Count is a Reducer returning the number of values, NaN included
func Count(values []float64) float64 {
	return float64(len(values))
}
