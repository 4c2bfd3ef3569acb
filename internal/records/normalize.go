package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Options controls typing
type Options struct {
	ClearNegativeDurations bool
	Strict                 bool
	Logger                 zerolog.Logger
}

// Result holds typed rows plus the data-quality findings made on the way
type Result struct {
	Rows     []models.Event
	Dropped  []string
	Warnings []models.QualityWarning
}

// Normalize types a raw table of the given kind.
// Rows are sorted by subject and start time, calendar dates are set and, for
// kinds with an end timestamp, durations are derived. Cells that fail to
// coerce are counted and left unset; rows without a subject or a usable start
// timestamp are skipped. Only missing required columns (and a kind mismatch
// under Strict) return an error.
func Normalize(kind models.Kind, raw models.RawTable, opts Options) (*Result, error) {
	log := opts.Logger.With().Str("component", "RecordTyping").Str("kind", string(kind)).Logger()

	if _, err := CheckKind(raw.Columns, kind, opts.Strict, log); err != nil {
		return nil, err
	}

	t := &typer{cols: make(map[string]int), failures: make(map[string]int)}
	res := &Result{}
	for i, c := range raw.Columns {
		if IsKnownField(kind, c) {
			t.cols[c] = i
		} else {
			res.Dropped = append(res.Dropped, c)
		}
	}
	if len(res.Dropped) > 0 {
		log.Debug().Strs("columns", res.Dropped).Msg("dropping unknown columns")
	}

	if err := t.require(kind); err != nil {
		return nil, err
	}

	var rows []models.Event
	switch kind {
	case models.KindAppEvents:
		rows = t.collect(raw.Rows, t.appEvent)
	case models.KindNotifications:
		rows = t.collect(raw.Rows, t.notification)
	case models.KindConnectivity:
		rows = t.collect(raw.Rows, t.connectivity)
	case models.KindSessions:
		if t.has(ColSessionOn) && t.has(ColTimestamp) {
			rows = t.pairSessions(raw.Rows, log)
		} else {
			rows = t.collect(raw.Rows, t.session)
		}
	}

	SortEvents(rows)
	SetDates(rows)

	total := raw.Len()
	if t.skipped > 0 {
		res.Warnings = append(res.Warnings, models.QualityWarning{
			Check: "unusable rows", Count: t.skipped, Total: total,
			Detail: "missing subject or start timestamp",
		})
	}
	cols := make([]string, 0, len(t.failures))
	for c := range t.failures {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		res.Warnings = append(res.Warnings, models.QualityWarning{
			Check: "coerce " + c, Count: t.failures[c], Total: total,
			Detail: "value left unset",
		})
	}

	if kind.HasEnd() {
		var w models.QualityWarning
		rows, w = DeriveDurations(rows, opts.ClearNegativeDurations, log)
		if !w.Empty() {
			res.Warnings = append(res.Warnings, w)
		}
	}

	for _, w := range res.Warnings {
		if w.Check != "negative duration" {
			Report(log, w)
		}
	}

	res.Rows = rows
	log.Debug().Int("rows", len(rows)).Int("input", total).Msg("formatted table")
	return res, nil
}

// SortEvents orders rows by subject, then start time
func SortEvents(rows []models.Event) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Subject != rows[j].Subject {
			return rows[i].Subject < rows[j].Subject
		}
		return rows[i].StartTime.Before(rows[j].StartTime)
	})
}

// SetDates fills StartDate and EndDate from the timestamps
func SetDates(rows []models.Event) {
	for i := range rows {
		rows[i].StartDate = models.DateOf(rows[i].StartTime)
		rows[i].EndDate = models.DateOf(rows[i].EndTime)
	}
}

type typer struct {
	cols     map[string]int
	failures map[string]int
	skipped  int
}

func (t *typer) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

func (t *typer) require(kind models.Kind) error {
	var missing []string
	need := func(cols ...string) {
		for _, c := range cols {
			if !t.has(c) {
				missing = append(missing, c)
			}
		}
	}

	need(ColID)
	switch kind {
	case models.KindAppEvents:
		need(ColStartTime, ColEndTime)
	case models.KindNotifications:
		need(ColTime)
	case models.KindSessions:
		if !(t.has(ColSessionOn) && t.has(ColTimestamp)) {
			need(ColStartTime, ColEndTime)
		}
	case models.KindConnectivity:
		if !t.has(ColTimestamp) && !t.has(ColTimestampMillis) {
			missing = append(missing, ColTimestamp)
		}
	}

	if len(missing) > 0 {
		return &models.SchemaError{Kind: kind, Missing: missing}
	}
	return nil
}

func (t *typer) collect(raw [][]string, build func([]string) (models.Event, bool)) []models.Event {
	rows := make([]models.Event, 0, len(raw))
	for _, r := range raw {
		e, ok := build(r)
		if !ok {
			t.skipped++
			continue
		}
		rows = append(rows, e)
	}
	return rows
}

func (t *typer) str(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *typer) number(row []string, col string) float64 {
	v, ok := ParseFloat(t.str(row, col))
	if !ok {
		t.failures[col]++
	}
	return v
}

func (t *typer) flag(row []string, col string) bool {
	s := t.str(row, col)
	if s == "" {
		return false
	}
	v, ok := ParseBool(s)
	if !ok {
		t.failures[col]++
	}
	return v
}

func (t *typer) timestamp(row []string, col string) (time.Time, bool) {
	s := t.str(row, col)
	if s == "" {
		return time.Time{}, false
	}
	v, err := ParseTimestamp(s)
	if err != nil {
		t.failures[col]++
		return time.Time{}, false
	}
	return v, true
}

func (t *typer) base(row []string) (models.Event, bool) {
	subject := t.str(row, ColID)
	if subject == "" {
		return models.Event{}, false
	}
	e := models.NewEvent(subject)
	e.StudyKey = t.str(row, ColStudyKey)
	e.SurveyID = t.str(row, ColSurveyID)
	e.DataVersion = t.str(row, ColDataVersion)
	return e, true
}

func (t *typer) appEvent(row []string) (models.Event, bool) {
	e, ok := t.base(row)
	if !ok {
		return e, false
	}
	if e.StartTime, ok = t.timestamp(row, ColStartTime); !ok {
		return e, false
	}
	e.EndTime, _ = t.timestamp(row, ColEndTime)

	e.Application = t.str(row, ColApplication)
	e.Session = t.str(row, ColSession)
	e.Model = t.str(row, ColModel)
	e.NotificationID = t.str(row, ColNotificationID)
	e.Notification = t.flag(row, ColNotification)
	e.Latitude = t.number(row, ColLatitude)
	e.Longitude = t.number(row, ColLongitude)

	if s := t.str(row, ColBattery); s != "" {
		if b, ok := ParseUint8(s); ok {
			e.Battery, e.HasBattery = b, true
		} else {
			t.failures[ColBattery]++
		}
	}
	return e, true
}

func (t *typer) notification(row []string) (models.Event, bool) {
	e, ok := t.base(row)
	if !ok {
		return e, false
	}
	if e.StartTime, ok = t.timestamp(row, ColTime); !ok {
		return e, false
	}
	e.Application = t.str(row, ColApplication)
	e.NotificationID = t.str(row, ColNotifID)
	e.Ongoing = t.flag(row, ColOngoing)
	e.Posted = t.flag(row, ColPosted)
	if s := t.str(row, ColPriority); s != "" {
		if p, ok := ParseInt(s); ok {
			e.Priority = p
		} else {
			t.failures[ColPriority]++
		}
	}
	return e, true
}

func (t *typer) connectivity(row []string) (models.Event, bool) {
	e, ok := t.base(row)
	if !ok {
		return e, false
	}
	e.StartTime, ok = t.timestamp(row, ColTimestamp)
	if !ok {
		e.StartTime, ok = t.timestamp(row, ColTimestampMillis)
	}
	if !ok {
		return e, false
	}
	e.Latitude = t.number(row, ColLatitude)
	e.Longitude = t.number(row, ColLongitude)
	e.NetworkOperator = t.str(row, ColNetworkOperator)
	e.NetworkType = t.str(row, ColNetworkType)
	e.SignalAsu = t.number(row, ColSignalAsu)
	e.SignalDbm = t.number(row, ColSignalDbm)
	e.SignalLevel = t.number(row, ColSignalLevel)
	return e, true
}

func (t *typer) session(row []string) (models.Event, bool) {
	e, ok := t.base(row)
	if !ok {
		return e, false
	}
	if e.StartTime, ok = t.timestamp(row, ColStartTime); !ok {
		return e, false
	}
	e.EndTime, _ = t.timestamp(row, ColEndTime)
	e.Session = t.str(row, ColSessionID)
	if e.Session == "" {
		e.Session = strconv.FormatInt(e.StartTime.Unix(), 10)
	}
	return e, true
}

// pairSessions turns screen on/off toggles into sessions. Each "on" row is
// closed by the next row of the same subject when that row is an "off"; in
// any other case the end of the session is unknown.
func (t *typer) pairSessions(raw [][]string, log zerolog.Logger) []models.Event {
	type toggle struct {
		event models.Event
		on    bool
	}

	toggles := make([]toggle, 0, len(raw))
	for _, r := range raw {
		e, ok := t.base(r)
		if !ok {
			t.skipped++
			continue
		}
		if e.StartTime, ok = t.timestamp(r, ColTimestamp); !ok {
			t.skipped++
			continue
		}
		on, ok := ParseBool(t.str(r, ColSessionOn))
		if !ok {
			t.failures[ColSessionOn]++
			continue
		}
		toggles = append(toggles, toggle{event: e, on: on})
	}

	sort.SliceStable(toggles, func(i, j int) bool {
		a, b := toggles[i].event, toggles[j].event
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.StartTime.Before(b.StartTime)
	})

	var sessions []models.Event
	valid := 0
	for i, tg := range toggles {
		if !tg.on {
			continue
		}
		e := tg.event
		e.Session = strconv.FormatInt(e.StartTime.Unix(), 10)
		if i+1 < len(toggles) {
			next := toggles[i+1]
			if next.event.Subject == e.Subject && !next.on {
				e.EndTime = next.event.StartTime
				valid++
			}
		}
		sessions = append(sessions, e)
	}

	if len(sessions) > 0 {
		log.Info().
			Int("valid", valid).
			Int("sessions", len(sessions)).
			Str("share", fmt.Sprintf("%.2f%%", 100*float64(valid)/float64(len(sessions)))).
			Msg("paired session toggles")
	}
	return sessions
}
