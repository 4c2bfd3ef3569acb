package spatial

import (
	"math"
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Centroid calculates the arithmetic centroid of a set of points
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{Lat: math.NaN(), Lon: math.NaN()}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// RadiusOfGyration calculates the root mean square distance in meters of
// points around center
func RadiusOfGyration(points []Point, center Point) float64 {
	if len(points) == 0 || math.IsNaN(center.Lat) || math.IsNaN(center.Lon) {
		return math.NaN()
	}

	var sumSquaredDist float64
	for _, p := range points {
		dist := HaversineDistance(center.Lat, center.Lon, p.Lat, p.Lon)
		sumSquaredDist += dist * dist
	}

	return math.Sqrt(sumSquaredDist / float64(len(points)))
}

// maxMedianIterations bounds Weiszfeld's iteration on degenerate input
const maxMedianIterations = 10000

// GeometricMedian finds the point minimizing the sum of planar Euclidean
// distances to points, using Weiszfeld's algorithm. Iteration starts from the
// centroid and stops once an update moves less than eps. Points that coincide
// with the current estimate are left out of the weighted step and accounted
// for by the zero-distance correction.
func GeometricMedian(points []Point, eps float64) Point {
	y := Centroid(points)
	if len(points) < 2 {
		return y
	}

	for iter := 0; iter < maxMedianIterations; iter++ {
		var tLat, tLon, dinvSum float64
		zeros := 0
		for _, p := range points {
			d := math.Hypot(p.Lat-y.Lat, p.Lon-y.Lon)
			if d == 0 {
				zeros++
				continue
			}
			inv := 1 / d
			dinvSum += inv
			tLat += p.Lat * inv
			tLon += p.Lon * inv
		}
		if zeros == len(points) {
			return y
		}
		t := Point{Lat: tLat / dinvSum, Lon: tLon / dinvSum}

		next := t
		if zeros > 0 {
			rLat, rLon := (t.Lat-y.Lat)*dinvSum, (t.Lon-y.Lon)*dinvSum
			r := math.Hypot(rLat, rLon)
			rinv := 0.0
			if r != 0 {
				rinv = float64(zeros) / r
			}
			a, b := math.Max(0, 1-rinv), math.Min(1, rinv)
			next = Point{Lat: a*t.Lat + b*y.Lat, Lon: a*t.Lon + b*y.Lon}
		}

		if math.Hypot(next.Lat-y.Lat, next.Lon-y.Lon) < eps {
			return next
		}
		y = next
	}
	return y
}
