package home

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/mobiledna-go/internal/logging"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/spatial"
)

func located(subject string, hour, minute int, lat, lon float64) models.Event {
	e := models.NewEvent(subject)
	e.StartTime = time.Date(2021, time.January, 5, hour, minute, 0, 0, time.UTC)
	e.StartDate = models.DateOf(e.StartTime)
	e.Latitude, e.Longitude = lat, lon
	return e
}

func estimator() Estimator {
	return Estimator{Window: DefaultWindow, Tolerance: 1e-7, Workers: 2, Log: logging.Nop()}
}

func TestWindowWrapsAndExcludesBounds(t *testing.T) {
	t.Parallel()

	at := func(h, m int) time.Time { return time.Date(2021, 1, 5, h, m, 0, 0, time.UTC) }
	w := DefaultWindow
	assert.True(t, w.Contains(at(23, 45)))
	assert.True(t, w.Contains(at(2, 0)))
	assert.False(t, w.Contains(at(23, 30)))
	assert.False(t, w.Contains(at(4, 30)))
	assert.False(t, w.Contains(at(12, 0)))

	day, err := ParseWindow("09:00", "17:00")
	require.NoError(t, err)
	assert.True(t, day.Contains(at(12, 0)))
	assert.False(t, day.Contains(at(2, 0)))

	_, err = ParseWindow("25:00", "04:00")
	assert.Error(t, err)
}

func TestEstimateUsesNightEvents(t *testing.T) {
	t.Parallel()

	rows := []models.Event{
		located("A", 23, 50, 51.0500, 3.7200),
		located("A", 1, 10, 51.0501, 3.7201),
		located("A", 3, 0, 51.0499, 3.7199),
		located("A", 2, 0, 51.0500, 3.7200),
		located("A", 14, 0, 50.8503, 4.3517), // daytime in Brussels
		located("A", 2, 30, 0, 0),
	}
	home := estimator().Estimate(rows)
	assert.Less(t, spatial.HaversineDistance(home.Lat, home.Lon, 51.05, 3.72), 20.0)
}

func TestEstimateWithoutLocationIsUnknown(t *testing.T) {
	t.Parallel()

	rows := []models.Event{located("A", 1, 0, 0, 0), located("A", 2, 0, math.NaN(), math.NaN())}
	home := estimator().Estimate(rows)
	assert.True(t, math.IsNaN(home.Lat))
	assert.True(t, math.IsNaN(home.Lon))

	dayOnly := estimator().Estimate([]models.Event{located("A", 12, 0, 51, 3.7)})
	assert.True(t, math.IsNaN(dayOnly.Lat))
}

func TestEstimateAllAndPlace(t *testing.T) {
	t.Parallel()

	rows := []models.Event{
		located("A", 0, 30, 51.05, 3.72),
		located("A", 1, 30, 51.05, 3.72),
		located("A", 12, 0, 51.0505, 3.72), // ~55 m north
		located("A", 13, 0, 51.055, 3.72),  // ~550 m
		located("A", 14, 0, 50.85, 4.35),   // Brussels
		located("A", 15, 0, 0, 0),
		located("B", 1, 0, 0, 0),
	}
	homes, err := estimator().EstimateAll(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, homes, 2)
	assert.True(t, math.IsNaN(homes["B"].Lat))

	placed := Place(rows, homes)
	zones := make([]Zone, len(placed))
	for i, p := range placed {
		zones[i] = p.Zone
	}
	assert.Equal(t, []Zone{ZoneHome, ZoneHome, ZoneHome, ZoneGrey, ZoneOutOfHome, ZoneUnknown, ZoneUnknown}, zones)
	assert.True(t, math.IsNaN(placed[5].Distance))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		meters float64
		want   Zone
	}{
		{0, ZoneHome},
		{99.9, ZoneHome},
		{100, ZoneGrey},
		{999.9, ZoneGrey},
		{1000, ZoneOutOfHome},
		{math.NaN(), ZoneUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.meters), "%v m", tt.meters)
	}
}
