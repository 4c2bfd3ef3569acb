package calendar

import (
	"github.com/jengzang/mobiledna-go/internal/models"
)

// Annotator fills the day-type and time-of-day columns of event rows
type Annotator struct {
	HolidaysSeparate bool
	Holidays         HolidaySet
}

// NewAnnotator creates an annotator backed by the Belgian holiday calendar
func NewAnnotator(holidaysSeparate bool) Annotator {
	return Annotator{HolidaysSeparate: holidaysSeparate, Holidays: NewBelgium()}
}

// AnnotateDates sets StartDOTW (and EndDOTW when the end is known) in place
func (a Annotator) AnnotateDates(rows []models.Event) {
	for i := range rows {
		e := &rows[i]
		if !e.StartDate.IsZero() {
			e.StartDOTW = LabelDate(e.StartDate, a.HolidaysSeparate, a.Holidays)
		}
		if !e.EndDate.IsZero() {
			e.EndDOTW = LabelDate(e.EndDate, a.HolidaysSeparate, a.Holidays)
		}
	}
}

// AnnotateTimes sets StartTOD in place
func (a Annotator) AnnotateTimes(rows []models.Event) {
	for i := range rows {
		if !rows[i].StartTime.IsZero() {
			rows[i].StartTOD = LabelHour(rows[i].StartTime.Hour())
		}
	}
}
