// Package calendar classifies dates into day types and hours into time-of-day buckets.
package calendar

import (
	"strings"
	"time"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// LabelDate classifies a date as week, weekend or holiday.
// Weekends take precedence; holidays only get their own label when separate is set.
func LabelDate(t time.Time, separate bool, holidays HolidaySet) models.DayType {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return models.DayWeekend
	}
	if separate && holidays != nil && holidays.Contains(t) {
		return models.DayHoliday
	}
	return models.DayWeek
}

// LabelHour buckets an hour of the day (0-23)
func LabelHour(hour int) models.TimeOfDay {
	switch {
	case hour <= 4:
		return models.LateNight
	case hour <= 8:
		return models.EarlyMorning
	case hour <= 12:
		return models.Morning
	case hour <= 16:
		return models.Noon
	case hour <= 20:
		return models.Eve
	default:
		return models.Night
	}
}

// ColumnName derives the annotation column for a date or time column:
// startDate -> startDOTW, startTime -> startTOD. Other names are returned unchanged.
func ColumnName(column string) string {
	lower := strings.ToLower(column)
	switch {
	case strings.HasSuffix(lower, "date"):
		return column[:len(column)-4] + "DOTW"
	case strings.HasSuffix(lower, "time"):
		return column[:len(column)-4] + "TOD"
	default:
		return column
	}
}
