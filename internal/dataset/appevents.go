package dataset

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// AppEvents is a dataset of app-open events
type AppEvents struct {
	*Dataset
}

// NewAppEvents wraps typed app events
func NewAppEvents(rows []models.Event, opts Options) *AppEvents {
	return &AppEvents{New(models.KindAppEvents, rows, opts)}
}

// AsAppEvents views a dataset as app events
func AsAppEvents(d *Dataset) (*AppEvents, error) {
	if d.kind != models.KindAppEvents {
		return nil, fmt.Errorf("dataset holds %s, not %s", d.kind, models.KindAppEvents)
	}
	return &AppEvents{d}, nil
}

// Filter narrows the events; see Dataset.Filter
func (a *AppEvents) Filter(c models.Criteria) *AppEvents {
	return &AppEvents{a.Dataset.Filter(c)}
}

// Strip trims logging edges per subject; see Dataset.Strip
func (a *AppEvents) Strip(ctx context.Context, opts StripOptions) (*AppEvents, error) {
	d, err := a.Dataset.Strip(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &AppEvents{d}, nil
}

// durationLimits caps the plausible foreground time of apps that tend to
// stay open without being looked at
var durationLimits = map[string]time.Duration{
	"com.waze": 40 * time.Minute,
}

// Preprocess drops events of capped applications that last longer than their limit
func (a *AppEvents) Preprocess() *AppEvents {
	removed := make(map[string]int)
	out := make([]models.Event, 0, len(a.rows))
	for _, e := range a.rows {
		if limit, ok := durationLimits[e.Application]; ok && e.Duration > limit.Seconds() {
			removed[e.Application]++
			continue
		}
		out = append(out, e)
	}
	for app, n := range removed {
		a.log.Warn().Str("application", app).Int("count", n).
			Dur("limit", durationLimits[app]).Msg("removed implausibly long events")
	}
	return &AppEvents{a.derive(out)}
}

// Events counts app events per subject
func (a *AppEvents) Events() *models.Series { return a.count("events") }

// Measure selects how applications and categories are ranked
type Measure string

const (
	ByEvents   Measure = "events"
	ByDuration Measure = "duration"
)

// Ranked is one entry of a ranking
type Ranked struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func rank(rows []models.Event, by Measure, key func(models.Event) string) ([]Ranked, error) {
	totals := make(map[string]float64)
	for _, e := range rows {
		switch by {
		case ByEvents:
			totals[key(e)]++
		case ByDuration:
			v := 0.0
			if !math.IsNaN(e.Duration) {
				v = e.Duration
			}
			totals[key(e)] += v
		default:
			return nil, fmt.Errorf("cannot rank by %q, choose %q or %q", by, ByEvents, ByDuration)
		}
	}
	out := make([]Ranked, 0, len(totals))
	for k, v := range totals {
		out = append(out, Ranked{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Applications ranks applications by event count or total duration
func (a *AppEvents) Applications(by Measure) ([]Ranked, error) {
	return rank(a.rows, by, func(e models.Event) string { return e.Application })
}

// Categories ranks categories by event count or total duration
func (a *AppEvents) Categories(by Measure) ([]Ranked, error) {
	a.ensure(annCategory)
	return rank(a.rows, by, func(e models.Event) string { return e.Category })
}

// Session identifies one app session of a subject
type Session struct {
	Subject string
	ID      string
}

// SessionSequences returns, per session, the applications in the order they were opened
func (a *AppEvents) SessionSequences() ([]Session, [][]string) {
	index := make(map[Session]int)
	var (
		keys []Session
		seqs [][]string
	)
	for _, e := range a.rows {
		k := Session{e.Subject, e.Session}
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			seqs = append(seqs, nil)
		}
		seqs[i] = append(seqs[i], e.Application)
	}
	return keys, seqs
}

func (a *AppEvents) dailyEvents(c models.Criteria, unit models.SeriesUnit, sd bool) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_events", criteria: c, unit: unit, within: countRows, across: across(sd), sd: sd})
}

// DailyEvents averages the number of events per logged day
func (a *AppEvents) DailyEvents(c models.Criteria, unit models.SeriesUnit) (*models.Series, error) {
	return a.dailyEvents(c, unit, false)
}

// DailyEventsSD is the standard deviation of the number of events per logged day
func (a *AppEvents) DailyEventsSD(c models.Criteria, unit models.SeriesUnit) (*models.Series, error) {
	return a.dailyEvents(c, unit, true)
}

func (a *AppEvents) dailyDurations(c models.Criteria, unit models.SeriesUnit, sd bool) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_durations", criteria: c, unit: unit, within: sumDurations, across: across(sd), sd: sd})
}

// DailyDurations averages the summed duration (seconds) per logged day
func (a *AppEvents) DailyDurations(c models.Criteria, unit models.SeriesUnit) (*models.Series, error) {
	return a.dailyDurations(c, unit, false)
}

// DailyDurationsSD is the standard deviation of the summed duration per logged day
func (a *AppEvents) DailyDurationsSD(c models.Criteria, unit models.SeriesUnit) (*models.Series, error) {
	return a.dailyDurations(c, unit, true)
}

// DailyActiveSessions averages the number of distinct sessions with activity per day
func (a *AppEvents) DailyActiveSessions(unit models.SeriesUnit) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_active_sessions", unit: unit, within: distinctSessions, across: across(false)})
}

// DailyActiveSessionsSD is the standard deviation of DailyActiveSessions
func (a *AppEvents) DailyActiveSessionsSD(unit models.SeriesUnit) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_active_sessions", unit: unit, within: distinctSessions, across: across(true), sd: true})
}

// DailyNumberOfApps averages the number of distinct applications used per day
func (a *AppEvents) DailyNumberOfApps(unit models.SeriesUnit) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_number_of_apps", unit: unit, within: distinctApps, across: across(false)})
}

// DailyNumberOfAppsSD is the standard deviation of DailyNumberOfApps
func (a *AppEvents) DailyNumberOfAppsSD(unit models.SeriesUnit) (*models.Series, error) {
	return a.daily(dailyQuery{metric: "daily_number_of_apps", unit: unit, within: distinctApps, across: across(true), sd: true})
}

// SessionsStartingWith counts, per subject, the sessions whose first event
// belongs to one of c.Categories (or, without categories, c.Applications).
// With normalize the count becomes a share of all sessions.
func (a *AppEvents) SessionsStartingWith(c models.Criteria, normalize bool, unit models.SeriesUnit) (*models.Series, error) {
	target := models.Criteria{Categories: c.Categories}
	var pick func(models.Event) string
	switch {
	case len(c.Categories) > 0:
		a.ensure(annCategory)
		pick = func(e models.Event) string { return e.Category }
	case len(c.Applications) > 0:
		target = models.Criteria{Applications: c.Applications}
		pick = func(e models.Event) string { return e.Application }
	default:
		return nil, fmt.Errorf("sessions starting with: need a category or an application")
	}
	need, unitValue, err := unitOf(unit)
	if err != nil {
		return nil, err
	}
	a.ensure(need)

	accepted := setOf(c.Categories)
	if len(c.Categories) == 0 {
		accepted = setOf(c.Applications)
	}

	type counts struct{ hits, total float64 }
	seen := make(map[Session]bool)
	groups := make(map[groupKey]*counts)
	for _, e := range a.rows {
		k := Session{e.Subject, e.Session}
		if seen[k] {
			continue
		}
		seen[k] = true
		g := groupKey{e.Subject, unitValue(e)}
		if groups[g] == nil {
			groups[g] = &counts{}
		}
		groups[g].total++
		if accepted[pick(e)] {
			groups[g].hits++
		}
	}

	s := models.NewSeries("sessions_starting_with" + target.Qualifier())
	for g, n := range groups {
		v := n.hits
		if normalize {
			v = n.hits / n.total
		}
		s.Set(g.subject, g.unit, v)
	}
	return s, nil
}
