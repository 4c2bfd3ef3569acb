package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// SessionUsageAnalyzer summarises screen sessions per logged day
type SessionUsageAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewSessionUsageAnalyzer creates the session usage analyzer
func NewSessionUsageAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &SessionUsageAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "session_usage")}
}

// Analyze implements analysis.Analyzer. Duration columns carry a "session_"
// prefix to stay apart from the app-event durations.
func (a *SessionUsageAnalyzer) Analyze(_ context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	s := in.Sessions
	if s == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindSessions)
	}

	var b builder
	b.add(s.Sessions(), nil)
	b.add(s.DailySessions(true))
	b.add(s.DailySessionsSD())
	durations, err := s.DailyDurations()
	b.add(prefixed("session_", durations, err))
	durationsSD, err := s.DailyDurationsSD()
	b.add(prefixed("session_", durationsSD, err))
	return b.table()
}

func init() {
	analysis.RegisterAnalyzer("session_usage", NewSessionUsageAnalyzer)
}
