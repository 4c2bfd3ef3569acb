package records

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// DetectKind guesses the kind of a table from its columns.
// The first kind whose distinguishing column is present wins.
func DetectKind(columns []string) (models.Kind, bool) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, d := range distinguishing {
		if present[d.column] {
			return d.kind, true
		}
	}
	return "", false
}

// CheckKind verifies that columns describe a table of the wanted kind.
// A mismatch is a SchemaError when strict, otherwise it is logged and false is returned.
func CheckKind(columns []string, want models.Kind, strict bool, log zerolog.Logger) (bool, error) {
	if !want.Valid() {
		return false, fmt.Errorf("unknown kind %q (want one of %v)", want, models.Kinds)
	}

	got, ok := DetectKind(columns)
	if ok && got == want {
		return true, nil
	}

	reason := fmt.Sprintf("expected %s, detected %s", want, got)
	if !ok {
		reason = fmt.Sprintf("expected %s, kind could not be determined", want)
	}
	if strict {
		return false, &models.SchemaError{
			Kind:    want,
			Missing: []string{DistinguishingColumn(want)},
			Reason:  reason,
		}
	}
	log.Warn().Str("expected", string(want)).Str("detected", string(got)).Msg("unexpected table kind")
	return false, nil
}
