package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-like layouts (fractional seconds allowed) and
// integer epoch values in seconds or milliseconds. Timestamps without an
// offset are read as wall-clock time in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 || n < -1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseFloat returns NaN for empty cells; ok is false only for malformed input
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// ParseBool accepts the usual spellings plus numeric 0/1 (including "1.0")
func ParseBool(s string) (value, ok bool) {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b, true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v != 0, true
	}
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	}
	return false, false
}

// ParseUint8 parses battery-style percentages
func ParseUint8(s string) (uint8, bool) {
	v, ok := ParseFloat(s)
	if !ok || math.IsNaN(v) || v < 0 || v > math.MaxUint8 {
		return 0, false
	}
	return uint8(math.Round(v)), true
}

// ParseInt parses integral values that may have been written as floats ("2.0")
func ParseInt(s string) (int, bool) {
	v, ok := ParseFloat(s)
	if !ok || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
