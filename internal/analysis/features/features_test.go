package features

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/dataset"
	"github.com/jengzang/mobiledna-go/internal/logging"
	"github.com/jengzang/mobiledna-go/internal/models"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2021, time.January, day, hour, minute, 0, 0, time.UTC)
}

func located(subject, app, session string, start time.Time, lat, lon float64) models.Event {
	e := models.NewEvent(subject)
	e.Application = app
	e.Session = session
	e.StartTime = start
	e.EndTime = start.Add(time.Minute)
	e.StartDate = models.DateOf(start)
	e.EndDate = models.DateOf(e.EndTime)
	e.Duration = 60
	e.Latitude = lat
	e.Longitude = lon
	return e
}

func options() dataset.Options {
	return dataset.Options{Logger: logging.Nop(), Workers: 2}
}

func input() *analysis.Input {
	rows := []models.Event{
		located("A", "com.whatsapp", "1", at(4, 0, 30), 51.05, 3.72),
		located("A", "com.waze", "2", at(4, 12, 0), 50.85, 4.35),
		located("A", "com.whatsapp", "3", at(5, 1, 30), 51.05, 3.72),
		located("B", "com.whatsapp", "1", at(4, 9, 0), 0, 0),
	}
	params := analysis.DefaultParams()
	params.ChurnApps = []string{"com.waze"}
	params.Workers = 2
	return &analysis.Input{AppEvents: dataset.NewAppEvents(rows, options()), Params: params}
}

func analyze(t *testing.T, skill string, in *analysis.Input) *models.FeatureTable {
	t.Helper()
	a, ok := analysis.GetAnalyzer(skill, logging.Nop())
	require.True(t, ok, skill)
	table, err := a.Analyze(context.Background(), in)
	require.NoError(t, err)
	return table
}

func TestSkillsRegistered(t *testing.T) {
	for _, skill := range []string{"daily_usage", "session_usage", "notification_usage", "connectivity_signal", "home_location", "churn"} {
		assert.Contains(t, analysis.Skills(), skill)
	}
}

func TestHomeLocation(t *testing.T) {
	table := analyze(t, "home_location", input())

	assert.InDelta(t, 51.05, table.Value("A", "home_latitude"), 1e-6)
	assert.InDelta(t, 3.72, table.Value("A", "home_longitude"), 1e-6)
	assert.InDelta(t, 2.0/3.0, table.Value("A", "share_home"), 1e-12)
	assert.Equal(t, 0.0, table.Value("A", "share_grey_zone"))
	assert.InDelta(t, 1.0/3.0, table.Value("A", "share_out_of_home"), 1e-12)
	assert.Equal(t, 0.0, table.Value("A", "median_distance_from_home"))
	assert.Greater(t, table.Value("A", "radius_of_gyration"), 1000.0)

	assert.True(t, math.IsNaN(table.Value("B", "home_latitude")))
	assert.True(t, math.IsNaN(table.Value("B", "share_home")))
}

func TestChurnColumns(t *testing.T) {
	table := analyze(t, "churn", input())

	assert.Equal(t, 0.0, table.Value("A", "days_used_com.waze"))
	assert.Equal(t, 1.0, table.Value("A", "days_not_used_com.waze"))
	assert.Equal(t, 1.0, table.Value("A", "churned_com.waze"))
	assert.True(t, math.IsNaN(table.Value("B", "churned_com.waze")))
}

func TestDailyUsageWithCategories(t *testing.T) {
	in := input()
	in.Params.Categories = []string{"unknown"}
	table := analyze(t, "daily_usage", in)

	assert.Equal(t, 2.0, table.Value("A", "days"))
	assert.Equal(t, 3.0, table.Value("A", "events"))
	assert.Equal(t, 1.5, table.Value("A", "daily_events"))
	assert.Equal(t, 1.5, table.Value("A", "daily_events_unknown"))
	assert.True(t, table.HasColumn("daily_number_of_apps_sd"))
}

func TestSessionUsage(t *testing.T) {
	session := func(start time.Time, seconds float64) models.Event {
		e := models.NewEvent("A")
		e.StartTime = start
		e.EndTime = start.Add(time.Duration(seconds) * time.Second)
		e.StartDate = models.DateOf(start)
		e.EndDate = models.DateOf(e.EndTime)
		e.Duration = seconds
		return e
	}
	in := &analysis.Input{Sessions: dataset.NewSessions([]models.Event{
		session(at(4, 9, 0), 100),
		session(at(4, 10, 0), 200),
		session(at(5, 9, 0), 60),
	}, options())}

	table := analyze(t, "session_usage", in)
	assert.Equal(t, 3.0, table.Value("A", "sessions"))
	assert.Equal(t, 1.5, table.Value("A", "avg_daily_sessions"))
	assert.Equal(t, 180.0, table.Value("A", "session_daily_durations"))
}

func TestMissingStreamsAreSkipped(t *testing.T) {
	a, ok := analysis.GetAnalyzer("notification_usage", logging.Nop())
	require.True(t, ok)
	_, err := a.Analyze(context.Background(), input())
	assert.True(t, errors.Is(err, analysis.ErrMissingStream))

	table, err := analysis.Run(context.Background(), []string{models.SkillAll}, input(), logging.Nop(), nil)
	require.NoError(t, err)
	assert.True(t, table.HasColumn("home_latitude"))
	assert.True(t, table.HasColumn("churned_com.waze"))
	assert.False(t, table.HasColumn("sessions"))
}

func TestRunExpandsAllAlongsideOtherSkills(t *testing.T) {
	table, err := analysis.Run(context.Background(), []string{"churn", models.SkillAll}, input(), logging.Nop(), nil)
	require.NoError(t, err)
	assert.True(t, table.HasColumn("home_latitude"))
	assert.True(t, table.HasColumn("churned_com.waze"))
}
