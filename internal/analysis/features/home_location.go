package features

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/analysis/home"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/spatial"
	"github.com/jengzang/mobiledna-go/internal/stats"
)

// HomeLocationAnalyzer estimates where subjects live and how far from home
// they use their phone
type HomeLocationAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewHomeLocationAnalyzer creates the home location analyzer
func NewHomeLocationAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &HomeLocationAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "home_location")}
}

// Analyze implements analysis.Analyzer
func (a *HomeLocationAnalyzer) Analyze(ctx context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	if in.AppEvents == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindAppEvents)
	}
	window, err := home.ParseWindow(in.Params.HomeWindowStart, in.Params.HomeWindowEnd)
	if err != nil {
		return nil, fmt.Errorf("home window: %w", err)
	}

	rows := in.AppEvents.Rows()
	est := home.Estimator{Window: window, Tolerance: in.Params.HomeTolerance, Workers: in.Params.Workers, Log: a.Log}
	homes, err := est.EstimateAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	placements := home.Place(rows, homes)

	type acc struct {
		distances []float64
		points    []spatial.Point
		zones     map[home.Zone]int
	}
	bySubject := make(map[string]*acc, len(homes))
	for subject := range homes {
		bySubject[subject] = &acc{zones: make(map[home.Zone]int)}
	}
	for i, ev := range rows {
		s := bySubject[ev.Subject]
		if ev.HasLocation() {
			s.points = append(s.points, spatial.Point{Lat: ev.Latitude, Lon: ev.Longitude})
		}
		if p := placements[i]; p.Zone != home.ZoneUnknown {
			s.distances = append(s.distances, p.Distance)
			s.zones[p.Zone]++
		}
	}

	t := models.NewFeatureTable()
	for subject, h := range homes {
		s := bySubject[subject]
		t.Set(subject, "home_latitude", h.Lat)
		t.Set(subject, "home_longitude", h.Lon)
		t.Set(subject, "median_distance_from_home", stats.Median(s.distances))
		t.Set(subject, "sd_distance_from_home", stats.StdDev(s.distances))
		for _, z := range []home.Zone{home.ZoneHome, home.ZoneGrey, home.ZoneOutOfHome} {
			t.Set(subject, "share_"+string(z), share(s.zones[z], len(s.distances)))
		}
		t.Set(subject, "radius_of_gyration", spatial.RadiusOfGyration(s.points, spatial.Centroid(s.points)))
	}
	return t, nil
}

// share is n/total, NaN without a denominator
func share(n, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(n) / float64(total)
}

func init() {
	analysis.RegisterAnalyzer("home_location", NewHomeLocationAnalyzer)
}
