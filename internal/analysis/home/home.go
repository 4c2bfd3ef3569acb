// Package home estimates where a subject lives from the coordinates logged
// with night-time app events, and places every event relative to that home.
package home

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/coverage"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/parallel"
	"github.com/jengzang/mobiledna-go/internal/spatial"
)

// Window is a clock interval with exclusive bounds. A start after the end
// wraps around midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// ParseWindow parses "HH:MM[:SS]" bounds
func ParseWindow(start, end string) (Window, error) {
	s, err := models.ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// Contains reports whether the clock time of t is after Start or before End
// (both, when the window does not wrap)
func (w Window) Contains(t time.Time) bool {
	c := models.ClockOf(t)
	if w.Start <= w.End {
		return c > w.Start && c < w.End
	}
	return c > w.Start || c < w.End
}

// DefaultWindow is 23:30 to 04:30
var DefaultWindow = Window{Start: 23*time.Hour + 30*time.Minute, End: 4*time.Hour + 30*time.Minute}

// Estimator locates homes
type Estimator struct {
	Window    Window
	Tolerance float64
	Workers   int
	Log       zerolog.Logger
}

// Unknown is the home of a subject without recorded coordinates
var Unknown = spatial.Point{Lat: math.NaN(), Lon: math.NaN()}

// Estimate returns the geometric median of the located events of one
// subject that fall inside the window. Subjects that never shared their
// location, or have no located event at night, get Unknown.
func (e Estimator) Estimate(rows []models.Event) spatial.Point {
	located := 0
	var night []spatial.Point
	for _, ev := range rows {
		if !ev.HasLocation() {
			continue
		}
		located++
		if e.Window.Contains(ev.StartTime) {
			night = append(night, spatial.Point{Lat: ev.Latitude, Lon: ev.Longitude})
		}
	}
	if located == 0 {
		return Unknown
	}
	e.Log.Debug().Int("located", located).Int("night", len(night)).Msg("filtered to home window")
	if len(night) == 0 {
		return Unknown
	}
	return spatial.GeometricMedian(night, e.Tolerance)
}

// EstimateAll estimates a home for every subject in rows, in parallel
func (e Estimator) EstimateAll(ctx context.Context, rows []models.Event) (map[string]spatial.Point, error) {
	groups := coverage.Split(rows)
	homes, err := parallel.Map(ctx, e.Workers, groups, func(_ context.Context, g coverage.Group) (spatial.Point, error) {
		return e.Estimate(g.Rows), nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]spatial.Point, len(groups))
	unknown := 0
	for i, g := range groups {
		out[g.Subject] = homes[i]
		if math.IsNaN(homes[i].Lat) {
			unknown++
		}
	}
	if unknown > 0 {
		e.Log.Warn().
			Str("check", "missing coordinates").
			Int("count", unknown).
			Int("total", len(groups)).
			Msg("no home estimate for subjects without located night-time events")
	}
	return out, nil
}

// Zone places an event relative to home
type Zone string

const (
	ZoneHome      Zone = "home"
	ZoneGrey      Zone = "grey_zone"
	ZoneOutOfHome Zone = "out_of_home"
	// ZoneUnknown marks events without a usable distance
	ZoneUnknown Zone = ""
)

// Classify maps a distance in meters to a zone: below 100 m is home,
// [100, 1000) m is the grey zone, anything further is out of home
func Classify(meters float64) Zone {
	switch {
	case math.IsNaN(meters):
		return ZoneUnknown
	case meters < 100:
		return ZoneHome
	case meters < 1000:
		return ZoneGrey
	default:
		return ZoneOutOfHome
	}
}

// Placement is an event's distance to home and the resulting zone
type Placement struct {
	Distance float64
	Zone     Zone
}

// Place measures every row against its subject's home. Rows without
// coordinates, or whose subject has no home, get a NaN distance.
func Place(rows []models.Event, homes map[string]spatial.Point) []Placement {
	out := make([]Placement, len(rows))
	for i, ev := range rows {
		d := math.NaN()
		if h, ok := homes[ev.Subject]; ok && ev.HasLocation() {
			d = spatial.DistanceOrNaN(ev.Latitude, ev.Longitude, h.Lat, h.Lon)
		}
		out[i] = Placement{Distance: d, Zone: Classify(d)}
	}
	return out
}
