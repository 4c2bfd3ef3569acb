// Package records turns raw logger tables into canonical, typed event rows.
package records

import (
	"strings"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Raw column names written by the logging application
const (
	ColID              = "id"
	ColApplication     = "application"
	ColBattery         = "battery"
	ColDataVersion     = "data_version"
	ColStartTime       = "startTime"
	ColEndTime         = "endTime"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
	ColModel           = "model"
	ColNotification    = "notification"
	ColNotificationID  = "notificationId"
	ColSession         = "session"
	ColStudyKey        = "studyKey"
	ColSurveyID        = "surveyId"
	ColNotifID         = "notificationID"
	ColOngoing         = "ongoing"
	ColPosted          = "posted"
	ColPriority        = "priority"
	ColTime            = "time"
	ColSessionID       = "sessionID"
	ColSessionOn       = "session on"
	ColSessionOff      = "session off"
	ColTimestamp       = "timestamp"
	ColTimestampMillis = "timestampMillis"
	ColNetworkOperator = "networkOperatorName"
	ColNetworkType     = "networkType"
	ColSignalAsu       = "signalStrengthAsu"
	ColSignalDbm       = "signalStrengthDbm"
	ColSignalLevel     = "signalStrengthLevel"
)

// Fields lists the columns each kind keeps; anything else is dropped on typing
var Fields = map[models.Kind][]string{
	models.KindNotifications: {
		ColApplication, ColDataVersion, ColID, ColNotifID, ColOngoing,
		ColPosted, ColPriority, ColStudyKey, ColSurveyID, ColTime,
	},
	models.KindAppEvents: {
		ColApplication, ColBattery, ColDataVersion, ColStartTime, ColEndTime,
		ColID, ColLatitude, ColLongitude, ColModel, ColNotification,
		ColNotificationID, ColSession, ColStudyKey, ColSurveyID,
	},
	models.KindSessions: {
		ColStartTime, ColEndTime, ColDataVersion, ColID, ColSessionID,
		ColStudyKey, ColSurveyID, ColSessionOn, ColSessionOff, ColTimestamp,
	},
	models.KindConnectivity: {
		ColLatitude, ColLongitude, ColNetworkOperator, ColNetworkType,
		ColSignalAsu, ColSignalDbm, ColSignalLevel, ColTimestampMillis,
		ColTimestamp, ColID,
	},
}

// MinFields is the lightweight column set used by bare loading
var MinFields = map[models.Kind][]string{
	models.KindAppEvents: {
		ColID, ColApplication, ColStartTime, ColEndTime, ColSession, ColSurveyID,
	},
	models.KindNotifications: {
		ColID, ColApplication, ColOngoing, ColPosted, ColPriority, ColSurveyID, ColTime,
	},
}

// distinguishing holds the column that only one kind carries, in detection order
var distinguishing = []struct {
	kind   models.Kind
	column string
}{
	{models.KindAppEvents, ColSession},
	{models.KindNotifications, ColTime},
	{models.KindSessions, ColSessionOn},
	{models.KindConnectivity, ColNetworkOperator},
}

// DistinguishingColumn returns the column that identifies a kind
func DistinguishingColumn(kind models.Kind) string {
	for _, d := range distinguishing {
		if d.kind == kind {
			return d.column
		}
	}
	return ""
}

// IsKnownField reports whether column belongs to the kind's schema
func IsKnownField(kind models.Kind, column string) bool {
	if IsThrowaway(column) {
		return false
	}
	for _, f := range Fields[kind] {
		if f == column {
			return true
		}
	}
	return false
}

// IsThrowaway reports index columns written by spreadsheet exports ("Unnamed: 0")
func IsThrowaway(column string) bool {
	return strings.HasPrefix(column, "Unnamed")
}
