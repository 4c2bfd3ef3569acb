package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/mobiledna-go/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLabelHour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour int
		want models.TimeOfDay
	}{
		{0, models.LateNight},
		{4, models.LateNight},
		{5, models.EarlyMorning},
		{8, models.EarlyMorning},
		{9, models.Morning},
		{12, models.Morning},
		{13, models.Noon},
		{16, models.Noon},
		{17, models.Eve},
		{20, models.Eve},
		{21, models.Night},
		{23, models.Night},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestLabelDate(t *testing.T) {
	t.Parallel()

	be := NewBelgium()
	nationalDay := date(2021, time.July, 21) // Wednesday
	saturday := date(2021, time.July, 24)
	monday := date(2021, time.July, 26)
	christmasSaturday := date(2021, time.December, 25)

	t.Run("weekday", func(t *testing.T) {
		assert.Equal(t, models.DayWeek, LabelDate(monday, true, be))
	})
	t.Run("weekend", func(t *testing.T) {
		assert.Equal(t, models.DayWeekend, LabelDate(saturday, true, be))
	})
	t.Run("holiday folded into week", func(t *testing.T) {
		assert.Equal(t, models.DayWeek, LabelDate(nationalDay, false, be))
	})
	t.Run("holiday separated", func(t *testing.T) {
		assert.Equal(t, models.DayHoliday, LabelDate(nationalDay, true, be))
	})
	t.Run("weekend wins over holiday", func(t *testing.T) {
		assert.Equal(t, models.DayWeekend, LabelDate(christmasSaturday, true, be))
	})
	t.Run("nil holiday set", func(t *testing.T) {
		assert.Equal(t, models.DayWeek, LabelDate(nationalDay, true, nil))
	})
}

// fixedDates is a hand-picked holiday set
type fixedDates map[time.Time]bool

func (d fixedDates) Contains(t time.Time) bool {
	return d[models.DateOf(t)]
}

func TestBelgiumHolidays(t *testing.T) {
	t.Parallel()

	be := NewBelgium()
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"new year", date(2021, time.January, 1), true},
		{"easter monday", date(2021, time.April, 5), true},
		{"labour day", date(2021, time.May, 1), true},
		{"ascension", date(2021, time.May, 13), true},
		{"whit monday", date(2021, time.May, 24), true},
		{"national day", date(2021, time.July, 21), true},
		{"assumption", date(2021, time.August, 15), true},
		{"all saints", date(2021, time.November, 1), true},
		{"armistice, late evening", time.Date(2021, time.November, 11, 18, 45, 0, 0, time.UTC), true},
		{"christmas", date(2021, time.December, 25), true},
		{"easter monday 2024", date(2024, time.April, 1), true},
		{"day before ascension", date(2021, time.May, 12), false},
		{"ordinary tuesday", date(2021, time.March, 16), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, be.Contains(tt.date))
		})
	}

	name, ok := be.Name(date(2021, time.July, 21))
	assert.True(t, ok)
	assert.NotEmpty(t, name)
	_, ok = be.Name(date(2021, time.July, 22))
	assert.False(t, ok)
}

func TestAnnotatorUsesInjectedHolidays(t *testing.T) {
	t.Parallel()

	tuesday := date(2021, time.March, 16)
	rows := []models.Event{{StartDate: tuesday}}

	a := Annotator{HolidaysSeparate: true, Holidays: fixedDates{tuesday: true}}
	a.AnnotateDates(rows)
	assert.Equal(t, models.DayHoliday, rows[0].StartDOTW)
}

func TestColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "startDOTW", ColumnName("startDate"))
	assert.Equal(t, "endDOTW", ColumnName("endDate"))
	assert.Equal(t, "startTOD", ColumnName("startTime"))
	assert.Equal(t, "DOTW", ColumnName("date"))
	assert.Equal(t, "TOD", ColumnName("time"))
	assert.Equal(t, "battery", ColumnName("battery"))
}

func TestAnnotatorIsDeterministic(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, time.July, 24, 22, 15, 0, 0, time.UTC)
	rows := []models.Event{{StartTime: start, StartDate: models.DateOf(start)}}

	a := NewAnnotator(false)
	a.AnnotateDates(rows)
	a.AnnotateTimes(rows)
	first := rows[0]

	a.AnnotateDates(rows)
	a.AnnotateTimes(rows)

	assert.Equal(t, first, rows[0])
	assert.Equal(t, models.DayWeekend, rows[0].StartDOTW)
	assert.Equal(t, models.Night, rows[0].StartTOD)
	assert.Empty(t, rows[0].EndDOTW)
}
