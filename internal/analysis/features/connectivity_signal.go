package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// ConnectivitySignalAnalyzer averages the signal strength per subject
type ConnectivitySignalAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewConnectivitySignalAnalyzer creates the connectivity analyzer
func NewConnectivitySignalAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &ConnectivitySignalAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "connectivity_signal")}
}

// Analyze implements analysis.Analyzer
func (a *ConnectivitySignalAnalyzer) Analyze(_ context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	c := in.Connectivity
	if c == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindConnectivity)
	}

	var b builder
	b.add(c.AverageSignalStrength("dbm"))
	b.add(c.AverageSignalStrength("asu"))
	return b.table()
}

func init() {
	analysis.RegisterAnalyzer("connectivity_signal", NewConnectivitySignalAnalyzer)
}
