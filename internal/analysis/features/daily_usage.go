package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// DailyUsageAnalyzer summarises app events per logged day
type DailyUsageAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewDailyUsageAnalyzer creates the daily usage analyzer
func NewDailyUsageAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &DailyUsageAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "daily_usage")}
}

// Analyze implements analysis.Analyzer
func (a *DailyUsageAnalyzer) Analyze(ctx context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	ae := in.AppEvents
	if ae == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindAppEvents)
	}

	var b builder
	b.add(ae.Days(), nil)
	b.add(ae.Events(), nil)
	b.add(ae.Durations(), nil)

	all := models.Criteria{}
	b.add(ae.DailyEvents(all, models.UnitNone))
	b.add(ae.DailyEventsSD(all, models.UnitNone))
	b.add(ae.DailyDurations(all, models.UnitNone))
	b.add(ae.DailyDurationsSD(all, models.UnitNone))
	b.add(ae.DailyActiveSessions(models.UnitNone))
	b.add(ae.DailyActiveSessionsSD(models.UnitNone))
	b.add(ae.DailyNumberOfApps(models.UnitNone))
	b.add(ae.DailyNumberOfAppsSD(models.UnitNone))

	b.add(ae.DailyEvents(all, models.UnitDayType))
	b.add(ae.DailyEvents(all, models.UnitTimeOfDay))
	b.add(ae.DailyDurations(all, models.UnitTimeOfDay))

	for _, category := range in.Params.Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := models.Criteria{Categories: []string{category}}
		b.add(ae.DailyEvents(c, models.UnitNone))
		b.add(ae.DailyDurations(c, models.UnitNone))
	}

	a.Log.Debug().Int("series", len(b.series)).Msg("daily usage collected")
	return b.table()
}

func init() {
	analysis.RegisterAnalyzer("daily_usage", NewDailyUsageAnalyzer)
}
