package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func groupedSeries() *Series {
	s := NewSeries("daily_events")
	for _, subject := range []string{"B", "A"} {
		for i, unit := range []string{"night", "morning", "late_night", "noon", "eve", "early_morning"} {
			s.Set(subject, unit, float64(i))
		}
	}
	return s
}

func TestAddSeriesColumnOrderIsStable(t *testing.T) {
	t.Parallel()

	want := []string{
		"daily_events_early_morning",
		"daily_events_eve",
		"daily_events_late_night",
		"daily_events_morning",
		"daily_events_night",
		"daily_events_noon",
	}
	for i := 0; i < 20; i++ {
		ft := NewFeatureTable()
		ft.AddSeries(groupedSeries())
		assert.Equal(t, want, ft.Columns)
	}
}

func TestAddSeriesKeepsUngroupedName(t *testing.T) {
	t.Parallel()

	s := NewSeries("days")
	s.Set("A", "", 7)
	ft := NewFeatureTable()
	ft.AddSeries(s)
	ft.AddSeries(NewSeries("empty"))

	assert.Equal(t, []string{"days", "empty"}, ft.Columns)
	assert.Equal(t, 7.0, ft.Value("A", "days"))
}
