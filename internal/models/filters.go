package models

import (
	"fmt"
	"strings"
	"time"
)

// Criteria represents filter parameters for querying an event table.
// Every populated field is a set of accepted values; fields are combined with AND.
type Criteria struct {
	Subjects     []string    `form:"subject" json:"subjects,omitempty"`
	Categories   []string    `form:"category" json:"categories,omitempty"`
	Applications []string    `form:"application" json:"applications,omitempty"`
	DayTypes     []DayType   `form:"dayType" json:"day_types,omitempty"`
	TimesOfDay   []TimeOfDay `form:"timeOfDay" json:"times_of_day,omitempty"`
	Hours        *HourWindow `json:"hours,omitempty"`

	FromPush   *bool `form:"fromPush" json:"from_push,omitempty"` // app events opened from a notification
	Priorities []int `form:"priority" json:"priorities,omitempty"`
	Ongoing    *bool `form:"ongoing" json:"ongoing,omitempty"`
	Posted     *bool `form:"posted" json:"posted,omitempty"`
}

// Qualifier renders the active category/application/day-type/time-of-day
// predicates as a field-name suffix, e.g. "_social_weekend"
func (c Criteria) Qualifier() string {
	var b strings.Builder
	add := func(values []string) {
		if len(values) == 0 {
			return
		}
		b.WriteString("_")
		b.WriteString(strings.Join(values, "-"))
	}
	add(c.Categories)
	add(c.Applications)
	add(stringsOf(c.DayTypes))
	add(stringsOf(c.TimesOfDay))
	return strings.ToLower(b.String())
}

// Empty reports whether no predicate is set
func (c Criteria) Empty() bool {
	return len(c.Subjects) == 0 && len(c.Categories) == 0 && len(c.Applications) == 0 &&
		len(c.DayTypes) == 0 && len(c.TimesOfDay) == 0 && c.Hours == nil &&
		c.FromPush == nil && len(c.Priorities) == 0 && c.Ongoing == nil && c.Posted == nil
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// HourWindow selects events by clock time, both ends inclusive.
// A window whose start is after its end wraps around midnight.
type HourWindow struct {
	Start time.Duration `json:"start"` // offset from midnight
	End   time.Duration `json:"end"`
}

// ParseHourWindow parses "HH:MM" or "HH:MM:SS" bounds
func ParseHourWindow(start, end string) (*HourWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return nil, err
	}
	return &HourWindow{Start: s, End: e}, nil
}

// Contains reports whether the clock time of t falls inside the window
func (w HourWindow) Contains(t time.Time) bool {
	c := ClockOf(t)
	if w.Start <= w.End {
		return c >= w.Start && c <= w.End
	}
	return c >= w.Start || c <= w.End
}

// ParseClock converts "HH:MM[:SS]" into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q (want HH:MM or HH:MM:SS)", s)
}

// ClockOf returns the wall-clock offset of t from its midnight
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// SeriesUnit is an optional extra grouping key for per-subject series
type SeriesUnit string

const (
	UnitNone        SeriesUnit = ""
	UnitDayType     SeriesUnit = "dotw"
	UnitTimeOfDay   SeriesUnit = "tod"
	UnitCategory    SeriesUnit = "category"
	UnitApplication SeriesUnit = "application"
	UnitWeek        SeriesUnit = "week"
)
