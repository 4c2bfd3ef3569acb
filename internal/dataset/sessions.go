package dataset

import (
	"context"
	"fmt"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Sessions is a dataset of screen-on sessions
type Sessions struct {
	*Dataset
}

// NewSessions wraps typed sessions
func NewSessions(rows []models.Event, opts Options) *Sessions {
	return &Sessions{New(models.KindSessions, rows, opts)}
}

// AsSessions views a dataset as sessions
func AsSessions(d *Dataset) (*Sessions, error) {
	if d.kind != models.KindSessions {
		return nil, fmt.Errorf("dataset holds %s, not %s", d.kind, models.KindSessions)
	}
	return &Sessions{d}, nil
}

// Filter narrows the sessions; see Dataset.Filter
func (s *Sessions) Filter(c models.Criteria) *Sessions {
	return &Sessions{s.Dataset.Filter(c)}
}

// Strip trims logging edges per subject; see Dataset.Strip
func (s *Sessions) Strip(ctx context.Context, opts StripOptions) (*Sessions, error) {
	d, err := s.Dataset.Strip(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Sessions{d}, nil
}

// Sync restricts the sessions to the date range each subject has app events for
func (s *Sessions) Sync(ae *AppEvents) *Sessions {
	return &Sessions{s.Dataset.Sync(ae.Dataset)}
}

// Sessions counts sessions per subject
func (s *Sessions) Sessions() *models.Series { return s.count("sessions") }

// DailySessions returns the number of sessions per day. With avg the days
// are averaged per subject; otherwise the series holds one value per date.
func (s *Sessions) DailySessions(avg bool) (*models.Series, error) {
	q := dailyQuery{metric: "avg_daily_sessions", within: countRows}
	if avg {
		q.across = across(false)
	}
	return s.daily(q)
}

// DailySessionsSD is the standard deviation of the number of sessions per day
func (s *Sessions) DailySessionsSD() (*models.Series, error) {
	return s.daily(dailyQuery{metric: "daily_sessions", within: countRows, across: across(true), sd: true})
}

// DailyDurations averages the summed session duration (seconds) per day
func (s *Sessions) DailyDurations() (*models.Series, error) {
	return s.daily(dailyQuery{metric: "daily_durations", within: sumDurations, across: across(false)})
}

// DailyDurationsSD is the standard deviation of the summed session duration per day
func (s *Sessions) DailyDurationsSD() (*models.Series, error) {
	return s.daily(dailyQuery{metric: "daily_durations", within: sumDurations, across: across(true), sd: true})
}
