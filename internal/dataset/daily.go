package dataset

import (
	"fmt"
	"time"

	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/stats"
)

// UnitDate groups a per-day series by calendar date instead of reducing across days
const UnitDate models.SeriesUnit = "date"

// unitOf returns the annotation a series unit needs and how to read it from a row
func unitOf(unit models.SeriesUnit) (annotation, func(models.Event) string, error) {
	switch unit {
	case models.UnitNone:
		return 0, func(models.Event) string { return "" }, nil
	case models.UnitDayType:
		return annDayType, func(e models.Event) string { return string(e.StartDOTW) }, nil
	case models.UnitTimeOfDay:
		return annTimeOfDay, func(e models.Event) string { return string(e.StartTOD) }, nil
	case models.UnitCategory:
		return annCategory, func(e models.Event) string { return e.Category }, nil
	case models.UnitApplication:
		return 0, func(e models.Event) string { return e.Application }, nil
	case models.UnitWeek:
		return 0, func(e models.Event) string {
			y, w := e.StartDate.ISOWeek()
			return fmt.Sprintf("%d-W%02d", y, w)
		}, nil
	case UnitDate:
		return 0, func(e models.Event) string { return e.StartDate.Format(models.DateLayout) }, nil
	default:
		return 0, nil, fmt.Errorf("unknown series unit %q", unit)
	}
}

// Within-day reducers
func countRows(rows []models.Event) float64 { return float64(len(rows)) }

func sumDurations(rows []models.Event) float64 {
	v := make([]float64, len(rows))
	for i, e := range rows {
		v[i] = e.Duration
	}
	return stats.Sum(v)
}

func distinctSessions(rows []models.Event) float64 {
	seen := make(map[string]bool)
	for _, e := range rows {
		seen[e.Session] = true
	}
	return float64(len(seen))
}

func distinctApps(rows []models.Event) float64 {
	seen := make(map[string]bool)
	for _, e := range rows {
		seen[e.Application] = true
	}
	return float64(len(seen))
}

// dailyQuery describes one member of the daily family
type dailyQuery struct {
	metric   string
	criteria models.Criteria
	unit     models.SeriesUnit
	within   func([]models.Event) float64
	// across reduces the per-day values of one subject; nil keeps one value per day
	across stats.Reducer
	sd     bool
}

func (q dailyQuery) name() string {
	name := q.metric
	if q.sd {
		name += "_sd"
	}
	return name + q.criteria.Qualifier()
}

type groupKey struct {
	subject, unit string
}

type dayKey struct {
	groupKey
	date time.Time
}

// daily filters the data, reduces the rows of every (subject[, unit], date)
// with within and then every (subject[, unit]) across its days.
// Days without any matching row are absent, not zero.
func (d *Dataset) daily(q dailyQuery) (*models.Series, error) {
	need, unitValue, err := unitOf(q.unit)
	if err != nil {
		return nil, err
	}
	data := d.Filter(q.criteria)
	data.ensure(need)

	days := make(map[dayKey][]models.Event)
	var order []dayKey
	for _, e := range data.rows {
		k := dayKey{groupKey{e.Subject, unitValue(e)}, e.StartDate}
		if _, ok := days[k]; !ok {
			order = append(order, k)
		}
		days[k] = append(days[k], e)
	}

	s := models.NewSeries(q.name())
	if q.across == nil {
		for _, k := range order {
			s.Set(k.subject, k.date.Format(models.DateLayout), q.within(days[k]))
		}
		return s, nil
	}

	perGroup := make(map[groupKey][]float64)
	for _, k := range order {
		perGroup[k.groupKey] = append(perGroup[k.groupKey], q.within(days[k]))
	}
	for g, values := range perGroup {
		s.Set(g.subject, g.unit, q.across(values))
	}
	return s, nil
}

func across(sd bool) stats.Reducer {
	if sd {
		return stats.StdDev
	}
	return stats.Mean
}
