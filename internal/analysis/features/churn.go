package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/analysis/churn"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// ChurnAnalyzer flags subjects who stopped using the configured applications
type ChurnAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewChurnAnalyzer creates the churn analyzer
func NewChurnAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &ChurnAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "churn")}
}

// Analyze implements analysis.Analyzer. Subjects that never used an app get
// no value for its columns.
func (a *ChurnAnalyzer) Analyze(ctx context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	if in.AppEvents == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindAppEvents)
	}
	if len(in.Params.ChurnApps) == 0 {
		a.Log.Debug().Msg("no churn applications configured")
	}

	rows := in.AppEvents.Rows()
	t := models.NewFeatureTable()
	for _, app := range in.Params.ChurnApps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, r := range churn.Detect(rows, app, a.Log) {
			churned := 0.0
			if r.Churned {
				churned = 1
			}
			t.Set(r.Subject, "days_used_"+app, float64(r.DaysUsed))
			t.Set(r.Subject, "days_not_used_"+app, float64(r.DaysNotUsed))
			t.Set(r.Subject, "churned_"+app, churned)
		}
	}
	return t, nil
}

func init() {
	analysis.RegisterAnalyzer("churn", NewChurnAnalyzer)
}
