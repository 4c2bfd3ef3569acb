package coverage

import (
	"time"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// DateRange is a subject's first and last logged date, both inclusive
type DateRange struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// Contains reports whether date lies inside the range
func (r DateRange) Contains(date time.Time) bool {
	return !date.Before(r.First) && !date.After(r.Last)
}

// Days returns the calendar span of the range, counting both ends
func (r DateRange) Days() int {
	return models.DaysBetween(r.First, r.Last) + 1
}

// Ranges maps subjects to their observed date range
type Ranges map[string]DateRange

// RangesOf computes the per-subject date range of rows
func RangesOf(rows []models.Event) Ranges {
	out := make(Ranges)
	for _, e := range rows {
		if e.StartDate.IsZero() {
			continue
		}
		r, ok := out[e.Subject]
		if !ok {
			out[e.Subject] = DateRange{First: e.StartDate, Last: e.StartDate}
			continue
		}
		if e.StartDate.Before(r.First) {
			r.First = e.StartDate
		}
		if e.StartDate.After(r.Last) {
			r.Last = e.StartDate
		}
		out[e.Subject] = r
	}
	return out
}

// Restrict keeps the rows of subjects present in ranges that fall inside
// that subject's range. Subjects missing from ranges are dropped entirely.
func Restrict(rows []models.Event, ranges Ranges) []models.Event {
	out := make([]models.Event, 0, len(rows))
	for _, e := range rows {
		r, ok := ranges[e.Subject]
		if !ok {
			continue
		}
		if r.Contains(e.StartDate) {
			out = append(out, e)
		}
	}
	return out
}
