// Package churn flags subjects who stopped using an application.
//
// The rule is a heuristic, not a statistical test: a subject churned from an
// app when the days logged after their last use outnumber the days between
// their first and last use.
package churn

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/coverage"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// Result is the churn verdict for one subject and application
type Result struct {
	Subject     string    `json:"id"`
	Application string    `json:"application"`
	LastUse     time.Time `json:"last_use"`
	DaysUsed    int       `json:"days_used"`
	DaysNotUsed int       `json:"days_not_used"`
	Churned     bool      `json:"churned"`
}

// Detect evaluates every subject that used app at least once. The logging
// span of a subject is taken from all of its rows; the usage span from its
// rows of app. Day counts are whole calendar-day differences.
func Detect(rows []models.Event, app string, log zerolog.Logger) []Result {
	logging := coverage.RangesOf(rows)

	var appRows []models.Event
	for _, e := range rows {
		if e.Application == app {
			appRows = append(appRows, e)
		}
	}
	usage := coverage.RangesOf(appRows)

	out := make([]Result, 0, len(usage))
	churned := 0
	for subject, used := range usage {
		span := logging[subject]
		r := Result{
			Subject:     subject,
			Application: app,
			LastUse:     used.Last,
			DaysUsed:    models.DaysBetween(used.First, used.Last),
			DaysNotUsed: models.DaysBetween(used.Last, span.Last),
		}
		r.Churned = r.DaysNotUsed > r.DaysUsed
		if r.Churned {
			churned++
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })

	log.Info().
		Str("application", app).
		Int("churned", churned).
		Int("users", len(out)).
		Msgf("%d out of %d users churned from %q", churned, len(out), app)
	return out
}

// Churners keeps only the churned results
func Churners(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Churned {
			out = append(out, r)
		}
	}
	return out
}
