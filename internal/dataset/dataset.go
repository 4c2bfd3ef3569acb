// Package dataset holds one normalized event table and the per-subject
// queries computed over it. Every transform returns a new Dataset; the only
// state a Dataset changes on itself is the memoized annotation columns
// (category, day type, time of day), which are filled on first use.
// A Dataset must not be used from several goroutines at once.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/calendar"
	"github.com/jengzang/mobiledna-go/internal/coverage"
	"github.com/jengzang/mobiledna-go/internal/metadata"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/records"
)

// Options configures how a Dataset is built and annotated
type Options struct {
	Logger    zerolog.Logger
	Metadata  metadata.Provider
	Annotator calendar.Annotator
	// CustomCategories prefers the curated category over the store genre
	CustomCategories       bool
	ClearNegativeDurations bool
	StrictSchema           bool
	// Workers bounds per-subject parallelism; 0 means one per CPU
	Workers int
}

type annotation uint8

const (
	annCategory annotation = 1 << iota
	annDayType
	annTimeOfDay
	annAppName
)

// Dataset is a normalized table of one kind plus its stripped flag
type Dataset struct {
	kind     models.Kind
	rows     []models.Event
	stripped bool
	have     annotation
	opts     Options
	log      zerolog.Logger
}

// New wraps already typed rows. The rows are copied.
func New(kind models.Kind, rows []models.Event, opts Options) *Dataset {
	if opts.Annotator.Holidays == nil {
		opts.Annotator.Holidays = calendar.NewBelgium()
	}
	return &Dataset{
		kind: kind,
		rows: append([]models.Event(nil), rows...),
		opts: opts,
		log:  opts.Logger.With().Str("component", "Dataset").Str("kind", string(kind)).Logger(),
	}
}

// FromRaw types a raw table and wraps the result
func FromRaw(kind models.Kind, raw models.RawTable, opts Options) (*Dataset, error) {
	res, err := records.Normalize(kind, raw, records.Options{
		ClearNegativeDurations: opts.ClearNegativeDurations,
		Strict:                 opts.StrictSchema,
		Logger:                 opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	d := New(kind, nil, opts)
	d.rows = res.Rows
	return d, nil
}

// derive builds a dataset sharing configuration and state flags with d
func (d *Dataset) derive(rows []models.Event) *Dataset {
	return &Dataset{kind: d.kind, rows: rows, stripped: d.stripped, have: d.have, opts: d.opts, log: d.log}
}

// Kind returns the stream the rows come from
func (d *Dataset) Kind() models.Kind { return d.kind }

// Len returns the number of rows
func (d *Dataset) Len() int { return len(d.rows) }

// Stripped reports whether Strip already ran on this data
func (d *Dataset) Stripped() bool { return d.stripped }

// Rows returns a copy of the canonical rows
func (d *Dataset) Rows() []models.Event {
	return append([]models.Event(nil), d.rows...)
}

// Users returns the distinct subjects, sorted
func (d *Dataset) Users() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range d.rows {
		if !seen[e.Subject] {
			seen[e.Subject] = true
			out = append(out, e.Subject)
		}
	}
	sort.Strings(out)
	return out
}

// Days counts the distinct logged dates per subject
func (d *Dataset) Days() *models.Series {
	days := make(map[string]map[time.Time]bool)
	for _, e := range d.rows {
		if days[e.Subject] == nil {
			days[e.Subject] = make(map[time.Time]bool)
		}
		days[e.Subject][e.StartDate] = true
	}
	s := models.NewSeries("days")
	for subject, set := range days {
		s.Set(subject, "", float64(len(set)))
	}
	return s
}

// Dates returns the sorted distinct logged dates per subject
func (d *Dataset) Dates() map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, g := range coverage.Split(d.rows) {
		out[g.Subject] = coverage.UniqueDates(g.Rows)
	}
	return out
}

// RelativeDates returns, per subject, each logged date as a day offset from
// the subject's first logged date
func (d *Dataset) RelativeDates() map[string][]int {
	out := make(map[string][]int)
	for subject, dates := range d.Dates() {
		offsets := make([]int, len(dates))
		for i, date := range dates {
			offsets[i] = models.DaysBetween(dates[0], date)
		}
		out[subject] = offsets
	}
	return out
}

// Ranges returns the first and last logged date per subject
func (d *Dataset) Ranges() coverage.Ranges {
	return coverage.RangesOf(d.rows)
}

// count returns the number of rows per subject under the given name
func (d *Dataset) count(name string) *models.Series {
	s := models.NewSeries(name)
	for _, e := range d.rows {
		v, _ := s.Get(e.Subject)
		s.Set(e.Subject, "", v+1)
	}
	return s
}

// Durations sums the known durations per subject, in seconds
func (d *Dataset) Durations() *models.Series {
	s := models.NewSeries("durations")
	for _, e := range d.rows {
		v, _ := s.Get(e.Subject)
		if !math.IsNaN(e.Duration) {
			v += e.Duration
		}
		s.Set(e.Subject, "", v)
	}
	return s
}

// Merge concatenates d with others of the same kind and removes exact
// duplicate rows. The result is a new, unstripped dataset.
func (d *Dataset) Merge(others ...*Dataset) (*Dataset, error) {
	n := len(d.rows)
	have := d.have
	for _, o := range others {
		if o.kind != d.kind {
			return nil, fmt.Errorf("cannot merge %s into %s", o.kind, d.kind)
		}
		n += len(o.rows)
		have &= o.have
	}

	seen := make(map[eventKey]bool, n)
	rows := make([]models.Event, 0, n)
	add := func(src []models.Event) {
		for _, e := range src {
			k := keyOf(e)
			if seen[k] {
				continue
			}
			seen[k] = true
			rows = append(rows, e)
		}
	}
	add(d.rows)
	for _, o := range others {
		add(o.rows)
	}
	records.SortEvents(rows)

	merged := d.derive(rows)
	merged.stripped = false
	merged.have = have
	d.log.Debug().Int("input", n).Int("rows", len(rows)).Msg("merged tables")
	return merged, nil
}
