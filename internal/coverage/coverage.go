// Package coverage refines which calendar days of a subject's logging are kept:
// edge trimming, longest uninterrupted run, first-n-days windows and
// synchronization of secondary streams to a reference date range.
package coverage

import (
	"sort"
	"time"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Group is one subject's rows
type Group struct {
	Subject string
	Rows    []models.Event
}

// Split groups rows by subject, keeping first-seen subject order and row order
func Split(rows []models.Event) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range rows {
		i, ok := index[e.Subject]
		if !ok {
			i = len(groups)
			index[e.Subject] = i
			groups = append(groups, Group{Subject: e.Subject})
		}
		groups[i].Rows = append(groups[i].Rows, e)
	}
	return groups
}

// Join concatenates groups back into one slice
func Join(groups []Group) []models.Event {
	n := 0
	for _, g := range groups {
		n += len(g.Rows)
	}
	out := make([]models.Event, 0, n)
	for _, g := range groups {
		out = append(out, g.Rows...)
	}
	return out
}

// UniqueDates returns the sorted distinct start dates of rows
func UniqueDates(rows []models.Event) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, e := range rows {
		if e.StartDate.IsZero() || seen[e.StartDate] {
			continue
		}
		seen[e.StartDate] = true
		dates = append(dates, e.StartDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func subjectCount(rows []models.Event) int {
	seen := make(map[string]bool)
	for _, e := range rows {
		seen[e.Subject] = true
	}
	return len(seen)
}

func singleSubject(op string, rows []models.Event) error {
	if n := subjectCount(rows); n > 1 {
		return &models.PreconditionError{Operation: op, Subjects: n}
	}
	return nil
}

func keepDates(rows []models.Event, keep func(time.Time) bool) []models.Event {
	out := make([]models.Event, 0, len(rows))
	for _, e := range rows {
		if keep(e.StartDate) {
			out = append(out, e)
		}
	}
	return out
}

// TrimEdges drops every row on the first and on the last logged date.
// Rows must belong to a single subject.
func TrimEdges(rows []models.Event) ([]models.Event, error) {
	if err := singleSubject("trim edges", rows); err != nil {
		return nil, err
	}
	dates := UniqueDates(rows)
	if len(dates) == 0 {
		return rows[:0:0], nil
	}
	first, last := dates[0], dates[len(dates)-1]
	return keepDates(rows, func(d time.Time) bool {
		return !d.Equal(first) && !d.Equal(last)
	}), nil
}

// LongestRunDates returns the longest stretch of consecutive calendar days in
// sorted unique dates. The earliest run wins a tie.
func LongestRunDates(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	bestStart, bestLen := 0, 1
	runStart := 0
	for i := 1; i < len(dates); i++ {
		if models.DaysBetween(dates[i-1], dates[i]) != 1 {
			runStart = i
		}
		if n := i - runStart + 1; n > bestLen {
			bestStart, bestLen = runStart, n
		}
	}
	return dates[bestStart : bestStart+bestLen]
}

// LongestRun keeps only the rows inside the longest uninterrupted run of
// logged days. Rows must belong to a single subject.
func LongestRun(rows []models.Event) ([]models.Event, error) {
	if err := singleSubject("longest run", rows); err != nil {
		return nil, err
	}
	run := LongestRunDates(UniqueDates(rows))
	if len(run) == 0 {
		return rows[:0:0], nil
	}
	first, last := run[0], run[len(run)-1]
	return keepDates(rows, func(d time.Time) bool {
		return !d.Before(first) && !d.After(last)
	}), nil
}

// FirstDays keeps rows dated within n calendar days from the subject's first
// logged date, that is [first, first+n-1]. Rows must belong to a single subject.
func FirstDays(rows []models.Event, n int) ([]models.Event, error) {
	if err := singleSubject("first days", rows); err != nil {
		return nil, err
	}
	dates := UniqueDates(rows)
	if len(dates) == 0 || n <= 0 {
		return rows[:0:0], nil
	}
	end := dates[0].AddDate(0, 0, n-1)
	return keepDates(rows, func(d time.Time) bool { return !d.After(end) }), nil
}
