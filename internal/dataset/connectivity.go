package dataset

import (
	"fmt"
	"strings"

	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/stats"
)

// Connectivity is a dataset of network connectivity records
type Connectivity struct {
	*Dataset
}

// NewConnectivity wraps typed connectivity records
func NewConnectivity(rows []models.Event, opts Options) *Connectivity {
	return &Connectivity{New(models.KindConnectivity, rows, opts)}
}

// AsConnectivity views a dataset as connectivity records
func AsConnectivity(d *Dataset) (*Connectivity, error) {
	if d.kind != models.KindConnectivity {
		return nil, fmt.Errorf("dataset holds %s, not %s", d.kind, models.KindConnectivity)
	}
	return &Connectivity{d}, nil
}

// AverageSignalStrength averages the recorded signal strength per subject.
// signal is "dbm" or "asu".
func (c *Connectivity) AverageSignalStrength(signal string) (*models.Series, error) {
	var read func(models.Event) float64
	switch strings.ToLower(signal) {
	case "dbm":
		read = func(e models.Event) float64 { return e.SignalDbm }
	case "asu":
		read = func(e models.Event) float64 { return e.SignalAsu }
	default:
		return nil, fmt.Errorf("incorrect signal type %q, use \"asu\" or \"dbm\"", signal)
	}

	values := make(map[string][]float64)
	for _, e := range c.rows {
		values[e.Subject] = append(values[e.Subject], read(e))
	}
	s := models.NewSeries("average_signal_" + strings.ToLower(signal))
	for subject, v := range values {
		s.Set(subject, "", stats.Mean(v))
	}
	return s, nil
}
