package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// NotificationUsageAnalyzer counts posted notifications
type NotificationUsageAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewNotificationUsageAnalyzer creates the notification analyzer
func NewNotificationUsageAnalyzer(log zerolog.Logger) analysis.Analyzer {
	return &NotificationUsageAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(log, "notification_usage")}
}

// Analyze implements analysis.Analyzer
func (a *NotificationUsageAnalyzer) Analyze(_ context.Context, in *analysis.Input) (*models.FeatureTable, error) {
	n := in.Notifications
	if n == nil {
		return nil, analysis.MissingStream(a.Name(), models.KindNotifications)
	}

	var b builder
	b.add(n.Notifications(), nil)
	b.add(n.DailyNotifications(models.Criteria{}, true))
	b.add(n.DailyNotificationsSD(models.Criteria{}))
	return b.table()
}

func init() {
	analysis.RegisterAnalyzer("notification_usage", NewNotificationUsageAnalyzer)
}
