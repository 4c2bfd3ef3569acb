package dataset

import (
	"math"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// eventKey is a comparable image of an Event: floats by bit pattern (so NaN
// equals NaN) and times by instant
type eventKey struct {
	subject, studyKey, surveyID, dataVersion string
	application, session, model, notifID     string
	notification, ongoing, posted            bool
	hasBattery                               bool
	battery                                  uint8
	priority                                 int
	start, end                               int64
	duration, lat, lon                       uint64
	operator, network                        string
	asu, dbm, level                          uint64
}

func unixNano(e models.Event, end bool) int64 {
	t := e.StartTime
	if end {
		t = e.EndTime
	}
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func keyOf(e models.Event) eventKey {
	return eventKey{
		subject: e.Subject, studyKey: e.StudyKey, surveyID: e.SurveyID, dataVersion: e.DataVersion,
		application: e.Application, session: e.Session, model: e.Model, notifID: e.NotificationID,
		notification: e.Notification, ongoing: e.Ongoing, posted: e.Posted,
		hasBattery: e.HasBattery, battery: e.Battery, priority: e.Priority,
		start: unixNano(e, false), end: unixNano(e, true),
		duration: math.Float64bits(e.Duration),
		lat:      math.Float64bits(e.Latitude),
		lon:      math.Float64bits(e.Longitude),
		operator: e.NetworkOperator, network: e.NetworkType,
		asu:   math.Float64bits(e.SignalAsu),
		dbm:   math.Float64bits(e.SignalDbm),
		level: math.Float64bits(e.SignalLevel),
	}
}
