package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Recorded reports whether a coordinate pair was actually logged.
// NaN or a zero component means location access was unavailable.
func Recorded(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat != 0 && lon != 0
}

// DistanceOrNaN returns the distance in meters between two coordinates, or
// NaN when either one was not recorded
func DistanceOrNaN(lat1, lon1, lat2, lon2 float64) float64 {
	if !Recorded(lat1, lon1) || !Recorded(lat2, lon2) {
		return math.NaN()
	}
	return HaversineDistance(lat1, lon1, lat2, lon2)
}
