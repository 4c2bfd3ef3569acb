package records

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// DeriveDurations sets Duration (seconds) from start and end timestamps.
// Rows without an end get NaN. Negative durations are removed when
// clearNegatives is set and kept otherwise; either way they are reported.
// The input slice is not modified.
func DeriveDurations(rows []models.Event, clearNegatives bool, log zerolog.Logger) ([]models.Event, models.QualityWarning) {
	out := make([]models.Event, 0, len(rows))
	warning := models.QualityWarning{Check: "negative duration", Total: len(rows)}

	for _, e := range rows {
		if e.HasEnd() && !e.StartTime.IsZero() {
			e.Duration = e.EndTime.Sub(e.StartTime).Seconds()
		} else {
			e.Duration = math.NaN()
		}

		if e.Duration < 0 {
			warning.Count++
			if clearNegatives {
				continue
			}
		}
		out = append(out, e)
	}

	if !warning.Empty() {
		warning.Detail = "kept for inspection"
		if clearNegatives {
			warning.Detail = "removed"
		}
		Report(log, warning)
	}
	return out, warning
}

// Report logs a data-quality warning at warn level
func Report(log zerolog.Logger, w models.QualityWarning) {
	if w.Empty() {
		return
	}
	log.Warn().
		Str("check", w.Check).
		Int("count", w.Count).
		Int("total", w.Total).
		Float64("percent", math.Round(w.Percent()*10000)/10000).
		Str("detail", w.Detail).
		Msg("data quality warning")
}
