package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometricMedianSymmetricSquare(t *testing.T) {
	t.Parallel()

	square := []Point{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	got := GeometricMedian(square, 1e-7)
	assert.InDelta(t, 0, got.Lat, 1e-6)
	assert.InDelta(t, 0, got.Lon, 1e-6)
}

func TestGeometricMedianResistsOutlier(t *testing.T) {
	t.Parallel()

	points := []Point{{51.05, 3.72}, {51.05, 3.72}, {51.0501, 3.7201}, {51.0499, 3.7199}, {50.85, 4.35}}
	median := GeometricMedian(points, 1e-7)
	centroid := Centroid(points)

	assert.Less(t, HaversineDistance(median.Lat, median.Lon, 51.05, 3.72), 50.0)
	assert.Greater(t, HaversineDistance(centroid.Lat, centroid.Lon, 51.05, 3.72), 1000.0)
}

func TestGeometricMedianDegenerate(t *testing.T) {
	t.Parallel()

	same := []Point{{4, 5}, {4, 5}, {4, 5}}
	assert.Equal(t, Point{4, 5}, GeometricMedian(same, 1e-7))

	got := GeometricMedian(nil, 1e-7)
	assert.True(t, math.IsNaN(got.Lat))
}

func TestDistanceOrNaN(t *testing.T) {
	t.Parallel()

	// Ghent to Brussels, roughly 50 km
	d := DistanceOrNaN(51.0543, 3.7174, 50.8503, 4.3517)
	assert.InDelta(t, 49_500, d, 1_500)

	assert.True(t, math.IsNaN(DistanceOrNaN(0, 0, 50.85, 4.35)))
	assert.True(t, math.IsNaN(DistanceOrNaN(51, math.NaN(), 50.85, 4.35)))
	assert.True(t, math.IsNaN(DistanceOrNaN(51, 3.7, 50.85, 0)))
}

func TestRadiusOfGyration(t *testing.T) {
	t.Parallel()

	center := Point{51, 4}
	assert.Equal(t, 0.0, RadiusOfGyration([]Point{center, center}, center))
	assert.True(t, math.IsNaN(RadiusOfGyration(nil, center)))
}
