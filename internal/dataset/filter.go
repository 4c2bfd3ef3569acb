package dataset

import (
	"github.com/jengzang/mobiledna-go/internal/models"
)

func setOf[T comparable](values []T) map[T]bool {
	if len(values) == 0 {
		return nil
	}
	out := make(map[T]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// Filter returns the rows matching every populated field of c. Annotation
// columns a predicate needs are computed first.
func (d *Dataset) Filter(c models.Criteria) *Dataset {
	if c.Empty() {
		return d.derive(append([]models.Event(nil), d.rows...))
	}

	var need annotation
	if len(c.Categories) > 0 {
		need |= annCategory
	}
	if len(c.DayTypes) > 0 {
		need |= annDayType
	}
	if len(c.TimesOfDay) > 0 {
		need |= annTimeOfDay
	}
	d.ensure(need)

	match := matcher(c)
	out := make([]models.Event, 0, len(d.rows))
	for _, e := range d.rows {
		if match(e) {
			out = append(out, e)
		}
	}
	return d.derive(out)
}

func matcher(c models.Criteria) func(models.Event) bool {
	subjects := setOf(c.Subjects)
	categories := setOf(c.Categories)
	applications := setOf(c.Applications)
	dayTypes := setOf(c.DayTypes)
	times := setOf(c.TimesOfDay)
	priorities := setOf(c.Priorities)

	return func(e models.Event) bool {
		switch {
		case subjects != nil && !subjects[e.Subject]:
			return false
		case categories != nil && !categories[e.Category]:
			return false
		case applications != nil && !applications[e.Application]:
			return false
		case dayTypes != nil && !dayTypes[e.StartDOTW]:
			return false
		case times != nil && !times[e.StartTOD]:
			return false
		case priorities != nil && !priorities[e.Priority]:
			return false
		case c.FromPush != nil && e.Notification != *c.FromPush:
			return false
		case c.Ongoing != nil && e.Ongoing != *c.Ongoing:
			return false
		case c.Posted != nil && e.Posted != *c.Posted:
			return false
		case c.Hours != nil && !c.Hours.Contains(e.StartTime):
			return false
		}
		return true
	}
}
