package records

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/mobiledna-go/internal/models"
)

func appEventsTable() models.RawTable {
	return models.RawTable{
		Columns: []string{"Unnamed: 0", "id", "application", "session", "startTime", "endTime", "battery", "latitude", "longitude", "notification", "extra"},
		Rows: [][]string{
			{"0", "B", "com.whatsapp", "s2", "2021-01-05T10:00:00.000", "2021-01-05T10:01:00.000", "80", "51.05", "3.72", "false", "x"},
			{"1", "A", "com.whatsapp", "s1", "2021-01-05 09:00:00", "2021-01-05 09:00:30", "81.0", "0", "0", "1", "x"},
			{"2", "A", "com.facebook.katana", "s1", "2021-01-05 08:00:00", "2021-01-05 08:02:00", "oops", "", "", "true", "x"},
			{"3", "A", "com.waze", "s3", "2021-01-06 08:00:00", "2021-01-06 07:59:00", "50", "", "", "false", "x"},
			{"4", "", "com.waze", "s4", "2021-01-06 08:00:00", "2021-01-06 08:10:00", "50", "", "", "false", "x"},
		},
	}
}

func TestNormalizeAppEvents(t *testing.T) {
	t.Parallel()

	res, err := Normalize(models.KindAppEvents, appEventsTable(), Options{ClearNegativeDurations: true, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Unnamed: 0", "extra"}, res.Dropped)
	require.Len(t, res.Rows, 3, "missing subject and negative duration rows are removed")

	// sorted by subject, then start time
	assert.Equal(t, "A", res.Rows[0].Subject)
	assert.Equal(t, "com.facebook.katana", res.Rows[0].Application)
	assert.Equal(t, "com.whatsapp", res.Rows[1].Application)
	assert.Equal(t, "B", res.Rows[2].Subject)

	assert.Equal(t, 120.0, res.Rows[0].Duration)
	assert.Equal(t, 30.0, res.Rows[1].Duration)
	assert.True(t, res.Rows[0].Notification)
	assert.False(t, res.Rows[0].HasBattery)
	assert.Equal(t, uint8(81), res.Rows[1].Battery)
	assert.False(t, res.Rows[1].HasLocation())
	assert.True(t, res.Rows[2].HasLocation())
	assert.Equal(t, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), res.Rows[0].StartDate)

	checks := map[string]int{}
	for _, w := range res.Warnings {
		checks[w.Check] = w.Count
	}
	assert.Equal(t, 1, checks["unusable rows"])
	assert.Equal(t, 1, checks["coerce battery"])
	assert.Equal(t, 1, checks["negative duration"])
}

func TestNormalizeKeepsNegativesWhenAsked(t *testing.T) {
	t.Parallel()

	res, err := Normalize(models.KindAppEvents, appEventsTable(), Options{ClearNegativeDurations: false, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)

	var negative int
	for _, e := range res.Rows {
		if e.Duration < 0 {
			negative++
		}
	}
	assert.Equal(t, 1, negative)
}

func TestNormalizeMissingRequiredColumn(t *testing.T) {
	t.Parallel()

	raw := models.RawTable{
		Columns: []string{"id", "application", "session", "startTime"},
		Rows:    [][]string{{"A", "x", "1", "2021-01-05 09:00:00"}},
	}
	_, err := Normalize(models.KindAppEvents, raw, Options{Logger: zerolog.Nop()})

	var schemaErr *models.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"endTime"}, schemaErr.Missing)
}

func TestNormalizeStrictKindMismatch(t *testing.T) {
	t.Parallel()

	raw := models.RawTable{
		Columns: []string{"id", "application", "time"},
		Rows:    [][]string{{"A", "x", "2021-01-05 09:00:00"}},
	}

	_, err := Normalize(models.KindAppEvents, raw, Options{Strict: true, Logger: zerolog.Nop()})
	var schemaErr *models.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, models.KindAppEvents, schemaErr.Kind)

	res, err := Normalize(models.KindNotifications, raw, Options{Strict: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.True(t, math.IsNaN(res.Rows[0].Duration))
}

func TestNormalizeNotifications(t *testing.T) {
	t.Parallel()

	raw := models.RawTable{
		Columns: []string{"id", "application", "time", "priority", "posted", "ongoing", "notificationID"},
		Rows: [][]string{
			{"A", "com.whatsapp", "2021-01-05 09:00:00", "1.0", "True", "False", "n1"},
			{"A", "com.whatsapp", "1609840800000", "-2", "true", "true", "n2"},
		},
	}
	res, err := Normalize(models.KindNotifications, raw, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	// epoch millis 1609840800000 = 2021-01-05 10:00:00 UTC
	assert.Equal(t, "n1", res.Rows[0].NotificationID)
	assert.Equal(t, 1, res.Rows[0].Priority)
	assert.True(t, res.Rows[0].Posted)
	assert.False(t, res.Rows[0].Ongoing)
	assert.Equal(t, -2, res.Rows[1].Priority)
	assert.True(t, res.Rows[1].Ongoing)
	assert.Empty(t, res.Warnings)
}

func TestPairSessions(t *testing.T) {
	t.Parallel()

	raw := models.RawTable{
		Columns: []string{"id", "timestamp", "session on"},
		Rows: [][]string{
			{"A", "2021-01-05 10:00:00", "true"},
			{"A", "2021-01-05 10:05:00", "false"},
			{"A", "2021-01-05 11:00:00", "true"},
			{"A", "2021-01-05 12:00:00", "true"},
			{"A", "2021-01-05 12:30:00", "false"},
			{"B", "2021-01-05 09:00:00", "true"},
		},
	}
	res, err := Normalize(models.KindSessions, raw, Options{ClearNegativeDurations: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)

	got := make([]float64, len(res.Rows))
	for i, e := range res.Rows {
		got[i] = e.Duration
	}
	want := []float64{300, math.NaN(), 1800, math.NaN()}
	assert.Empty(t, cmp.Diff(want, got, cmpopts.EquateNaNs()))
}

func TestDeriveDurationsIdempotent(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, 1, 5, 10, 0, 0, 0, time.UTC)
	rows := []models.Event{
		{Subject: "A", StartTime: start, EndTime: start.Add(90 * time.Second)},
		{Subject: "A", StartTime: start, EndTime: start.Add(-time.Second)},
		{Subject: "A", StartTime: start},
	}

	first, w := DeriveDurations(rows, true, zerolog.Nop())
	assert.Equal(t, 1, w.Count)
	second, w := DeriveDurations(first, true, zerolog.Nop())
	assert.True(t, w.Empty())

	assert.Empty(t, cmp.Diff(first, second, cmpopts.EquateNaNs()))
	assert.Equal(t, 90.0, second[0].Duration)
	assert.True(t, math.IsNaN(second[1].Duration))
	assert.True(t, rows[0].Duration == 0, "input rows untouched")
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		columns []string
		want    models.Kind
		ok      bool
	}{
		{[]string{"id", "session", "startTime"}, models.KindAppEvents, true},
		{[]string{"id", "time", "application"}, models.KindNotifications, true},
		{[]string{"id", "timestamp", "session on"}, models.KindSessions, true},
		{[]string{"id", "timestamp", "networkOperatorName"}, models.KindConnectivity, true},
		{[]string{"id", "session", "time"}, models.KindAppEvents, true},
		{[]string{"id"}, "", false},
	}
	for _, tt := range tests {
		got, ok := DetectKind(tt.columns)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2021, 1, 5, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2021-01-05T10:00:00",
		"2021-01-05T10:00:00.000",
		"2021-01-05 10:00:00",
		"2021-01-05 10:00:00.000000",
		"2021-01-05T10:00:00Z",
		"1609840800",
		"1609840800000",
	} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
