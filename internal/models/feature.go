package models

import (
	"math"
	"sort"
)

// SeriesKey identifies one value of a per-subject series
type SeriesKey struct {
	Subject string
	Unit    string // empty unless the series was grouped by an extra unit
}

// Series is a named per-subject statistic
type Series struct {
	Name   string
	Values map[SeriesKey]float64
}

// NewSeries creates an empty series
func NewSeries(name string) *Series {
	return &Series{Name: name, Values: make(map[SeriesKey]float64)}
}

// Set stores the value for a subject (and optional unit)
func (s *Series) Set(subject, unit string, v float64) {
	s.Values[SeriesKey{Subject: subject, Unit: unit}] = v
}

// Get returns the ungrouped value for a subject
func (s *Series) Get(subject string) (float64, bool) {
	v, ok := s.Values[SeriesKey{Subject: subject}]
	return v, ok
}

// Subjects returns the subjects present in the series, sorted
func (s *Series) Subjects() []string {
	seen := make(map[string]bool)
	for k := range s.Values {
		seen[k.Subject] = true
	}
	return sortedKeys(seen)
}

// FeatureTable is a wide per-subject table: one row per subject, one column per statistic
type FeatureTable struct {
	Columns []string
	Rows    map[string]map[string]float64
}

// NewFeatureTable creates an empty table
func NewFeatureTable() *FeatureTable {
	return &FeatureTable{Rows: make(map[string]map[string]float64)}
}

// Set stores one cell, adding the column on first use
func (t *FeatureTable) Set(subject, column string, v float64) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
	row, ok := t.Rows[subject]
	if !ok {
		row = make(map[string]float64)
		t.Rows[subject] = row
	}
	row[column] = v
}

// HasColumn reports whether the column already exists
func (t *FeatureTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Keys returns the series keys ordered by unit, then subject
func (s *Series) Keys() []SeriesKey {
	keys := make([]SeriesKey, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Unit != keys[j].Unit {
			return keys[i].Unit < keys[j].Unit
		}
		return keys[i].Subject < keys[j].Subject
	})
	return keys
}

// AddSeries pivots a series into the table. Grouped series become one column
// per unit, named "<series>_<unit>", added in unit order.
func (t *FeatureTable) AddSeries(s *Series) {
	for _, k := range s.Keys() {
		col := s.Name
		if k.Unit != "" {
			col += "_" + k.Unit
		}
		t.Set(k.Subject, col, s.Values[k])
	}
	if len(s.Values) == 0 && !t.HasColumn(s.Name) {
		t.Columns = append(t.Columns, s.Name)
	}
}

// Join copies every cell of other into t
func (t *FeatureTable) Join(other *FeatureTable) {
	if other == nil {
		return
	}
	for _, c := range other.Columns {
		if !t.HasColumn(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	for subject, row := range other.Rows {
		for c, v := range row {
			t.Set(subject, c, v)
		}
	}
}

// Value returns a cell, NaN when absent
func (t *FeatureTable) Value(subject, column string) float64 {
	if row, ok := t.Rows[subject]; ok {
		if v, ok := row[column]; ok {
			return v
		}
	}
	return math.NaN()
}

// Subjects returns the row keys, sorted
func (t *FeatureTable) Subjects() []string {
	seen := make(map[string]bool, len(t.Rows))
	for s := range t.Rows {
		seen[s] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
