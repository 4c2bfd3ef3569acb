package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jengzang/mobiledna-go/internal/calendar"
	"github.com/jengzang/mobiledna-go/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05.000"

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

// WriteFeaturesCSV writes one line per subject, "id" first, empty cells for NaN
func WriteFeaturesCSV(w io.Writer, t *models.FeatureTable, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	if err := cw.Write(append([]string{"id"}, t.Columns...)); err != nil {
		return err
	}
	for _, subject := range t.Subjects() {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, subject)
		for _, c := range t.Columns {
			rec = append(rec, formatFloat(t.Value(subject, c)))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type eventColumn struct {
	name string
	get  func(models.Event) string
}

var (
	colID       = eventColumn{"id", func(e models.Event) string { return e.Subject }}
	colApp      = eventColumn{"application", func(e models.Event) string { return e.Application }}
	colStart    = eventColumn{"startTime", func(e models.Event) string { return formatTime(e.StartTime) }}
	colEnd      = eventColumn{"endTime", func(e models.Event) string { return formatTime(e.EndTime) }}
	colDuration = eventColumn{"duration", func(e models.Event) string { return formatFloat(e.Duration) }}
	colDate     = eventColumn{"startDate", func(e models.Event) string { return formatDate(e.StartDate) }}
	colLat      = eventColumn{"latitude", func(e models.Event) string { return formatFloat(e.Latitude) }}
	colLon      = eventColumn{"longitude", func(e models.Event) string { return formatFloat(e.Longitude) }}
	colCategory = eventColumn{"category", func(e models.Event) string { return e.Category }}
	colDOTW     = eventColumn{calendar.ColumnName(colDate.name), func(e models.Event) string { return string(e.StartDOTW) }}
	colTOD      = eventColumn{calendar.ColumnName(colStart.name), func(e models.Event) string { return string(e.StartTOD) }}
)

var eventColumns = map[models.Kind][]eventColumn{
	models.KindAppEvents: {
		colID, colApp,
		{"session", func(e models.Event) string { return e.Session }},
		colStart, colEnd, colDuration, colDate,
		{"notification", func(e models.Event) string { return strconv.FormatBool(e.Notification) }},
		{"battery", func(e models.Event) string {
			if !e.HasBattery {
				return ""
			}
			return strconv.Itoa(int(e.Battery))
		}},
		colLat, colLon, colCategory, colDOTW, colTOD,
	},
	models.KindNotifications: {
		colID, colApp,
		{"time", func(e models.Event) string { return formatTime(e.StartTime) }},
		colDate,
		{"priority", func(e models.Event) string { return strconv.Itoa(e.Priority) }},
		{"ongoing", func(e models.Event) string { return strconv.FormatBool(e.Ongoing) }},
		{"posted", func(e models.Event) string { return strconv.FormatBool(e.Posted) }},
		colCategory, colDOTW, colTOD,
	},
	models.KindSessions: {
		colID,
		{"session", func(e models.Event) string { return e.Session }},
		colStart, colEnd, colDuration, colDate, colDOTW, colTOD,
	},
	models.KindConnectivity: {
		colID,
		{"timestamp", func(e models.Event) string { return formatTime(e.StartTime) }},
		colDate, colLat, colLon,
		{"networkOperatorName", func(e models.Event) string { return e.NetworkOperator }},
		{"networkType", func(e models.Event) string { return e.NetworkType }},
		{"signalStrengthAsu", func(e models.Event) string { return formatFloat(e.SignalAsu) }},
		{"signalStrengthDbm", func(e models.Event) string { return formatFloat(e.SignalDbm) }},
		{"signalStrengthLevel", func(e models.Event) string { return formatFloat(e.SignalLevel) }},
	},
}

// WriteEventsCSV writes canonical rows of one kind, derived columns included
func WriteEventsCSV(w io.Writer, kind models.Kind, rows []models.Event, sep rune) error {
	cols, ok := eventColumns[kind]
	if !ok {
		return fmt.Errorf("invalid kind %q", kind)
	}
	cw := csv.NewWriter(w)
	cw.Comma = sep

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for _, e := range rows {
		for i, c := range cols {
			rec[i] = c.get(e)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFeatures writes a feature table to path as csv or parquet, chosen by extension
func SaveFeatures(ctx context.Context, path string, t *models.FeatureTable) error {
	return save(ctx, path, func(w io.Writer) error { return WriteFeaturesCSV(w, t, DefaultSeparator) })
}

// SaveEvents writes canonical rows to path as csv or parquet, chosen by extension
func SaveEvents(ctx context.Context, path string, kind models.Kind, rows []models.Event) error {
	return save(ctx, path, func(w io.Writer) error { return WriteEventsCSV(w, kind, rows, DefaultSeparator) })
}

func save(ctx context.Context, path string, write func(io.Writer) error) error {
	format, err := InferFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	switch format {
	case FormatCSV:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return f.Close()
	case FormatParquet:
		return writeParquet(ctx, path, write)
	default:
		return fmt.Errorf("cannot save as %s", format)
	}
}

// writeParquet stages the table as CSV and converts it with DuckDB
func writeParquet(ctx context.Context, path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp("", "mobiledna-*.csv")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("stage %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	db, err := openDuckDB()
	if err != nil {
		return err
	}
	defer db.Close()

	query := fmt.Sprintf(
		"COPY (SELECT * FROM read_csv(%s, header = true, delim = %s)) TO %s (FORMAT PARQUET, COMPRESSION 'ZSTD')",
		quoteLiteral(tmp.Name()), quoteLiteral(string(DefaultSeparator)), quoteLiteral(path))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("export parquet %s: %w", path, err)
	}
	return nil
}
