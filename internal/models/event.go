package models

import (
	"math"
	"time"
)

// Kind identifies which logging stream a table was collected from
type Kind string

const (
	KindAppEvents     Kind = "appevents"
	KindSessions      Kind = "sessions"
	KindNotifications Kind = "notifications"
	KindConnectivity  Kind = "connectivity"
)

// Kinds lists every supported stream in detection priority order
var Kinds = []Kind{KindAppEvents, KindNotifications, KindSessions, KindConnectivity}

// Valid reports whether k is a supported stream
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// HasEnd reports whether records of this kind carry an end timestamp
func (k Kind) HasEnd() bool {
	return k == KindAppEvents || k == KindSessions
}

// Event is one canonical row of a normalized table.
// Fields that do not apply to a kind keep their zero value; coordinates and
// signal readings use NaN for "not recorded".
type Event struct {
	// Identity
	Subject     string `json:"id"`
	StudyKey    string `json:"studyKey,omitempty"`
	SurveyID    string `json:"surveyId,omitempty"`
	DataVersion string `json:"data_version,omitempty"`

	// App usage
	Application    string `json:"application,omitempty"`
	Session        string `json:"session,omitempty"`
	Model          string `json:"model,omitempty"`
	Notification   bool   `json:"notification,omitempty"` // opened from a push notification
	NotificationID string `json:"notificationId,omitempty"`

	// Timing
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitempty"` // zero when unknown
	Duration  float64   `json:"duration"`          // seconds, NaN when no end
	StartDate time.Time `json:"startDate"`         // calendar date at UTC midnight
	EndDate   time.Time `json:"endDate,omitempty"`

	// Device context
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Battery    uint8   `json:"battery,omitempty"`
	HasBattery bool    `json:"-"`

	// Notifications
	Priority int  `json:"priority,omitempty"`
	Ongoing  bool `json:"ongoing,omitempty"`
	Posted   bool `json:"posted,omitempty"`

	// Connectivity
	NetworkOperator string  `json:"networkOperatorName,omitempty"`
	NetworkType     string  `json:"networkType,omitempty"`
	SignalAsu       float64 `json:"signalStrengthAsu"`
	SignalDbm       float64 `json:"signalStrengthDbm"`
	SignalLevel     float64 `json:"signalStrengthLevel"`

	// Derived annotations, empty until computed
	Category  string    `json:"category,omitempty"`
	AppName   string    `json:"name,omitempty"`
	StartDOTW DayType   `json:"startDOTW,omitempty"`
	EndDOTW   DayType   `json:"endDOTW,omitempty"`
	StartTOD  TimeOfDay `json:"startTOD,omitempty"`
}

// NewEvent returns an event with the "not recorded" sentinels set
func NewEvent(subject string) Event {
	return Event{
		Subject:     subject,
		Duration:    math.NaN(),
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
		SignalAsu:   math.NaN(),
		SignalDbm:   math.NaN(),
		SignalLevel: math.NaN(),
	}
}

// HasEnd reports whether the end timestamp is known
func (e Event) HasEnd() bool {
	return !e.EndTime.IsZero()
}

// HasLocation reports whether the event carries a usable coordinate pair.
// A zero component is what the logger writes when location permission was denied.
func (e Event) HasLocation() bool {
	if math.IsNaN(e.Latitude) || math.IsNaN(e.Longitude) {
		return false
	}
	return e.Latitude != 0 && e.Longitude != 0
}

// DateOf truncates a timestamp to its wall-clock calendar date, expressed as UTC midnight
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference between two calendar dates
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// DateLayout is the layout used to render calendar dates
const DateLayout = "2006-01-02"
