package models

import (
	"fmt"
	"strings"
)

// SchemaError is returned when a table lacks columns needed to interpret it
type SchemaError struct {
	Kind    Kind
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error (%s)", e.Kind)
	if len(e.Missing) > 0 {
		msg += ": missing columns " + strings.Join(e.Missing, ", ")
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// PreconditionError is returned when a per-subject operation receives rows
// from more than one subject
type PreconditionError struct {
	Operation string
	Subjects  int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: expected rows of a single subject, got %d subjects; group by subject first",
		e.Operation, e.Subjects)
}

// QualityWarning describes rows that were dropped or flagged during a
// recoverable data-quality check. It is reported, never returned as an error.
type QualityWarning struct {
	Check  string
	Count  int
	Total  int
	Detail string
}

// Percent returns the affected share of rows, in percent
func (w QualityWarning) Percent() float64 {
	if w.Total == 0 {
		return 0
	}
	return 100 * float64(w.Count) / float64(w.Total)
}

// Empty reports whether no rows were affected
func (w QualityWarning) Empty() bool {
	return w.Count == 0
}
