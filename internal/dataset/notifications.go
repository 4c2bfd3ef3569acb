package dataset

import (
	"context"
	"fmt"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Notifications is a dataset of notification records
type Notifications struct {
	*Dataset
}

// NewNotifications wraps typed notifications
func NewNotifications(rows []models.Event, opts Options) *Notifications {
	return &Notifications{New(models.KindNotifications, rows, opts)}
}

// AsNotifications views a dataset as notifications
func AsNotifications(d *Dataset) (*Notifications, error) {
	if d.kind != models.KindNotifications {
		return nil, fmt.Errorf("dataset holds %s, not %s", d.kind, models.KindNotifications)
	}
	return &Notifications{d}, nil
}

// Filter narrows the notifications; see Dataset.Filter
func (n *Notifications) Filter(c models.Criteria) *Notifications {
	return &Notifications{n.Dataset.Filter(c)}
}

// Strip trims logging edges per subject; see Dataset.Strip
func (n *Notifications) Strip(ctx context.Context, opts StripOptions) (*Notifications, error) {
	d, err := n.Dataset.Strip(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Notifications{d}, nil
}

// Sync restricts the notifications to the date range each subject has app events for
func (n *Notifications) Sync(ae *AppEvents) *Notifications {
	return &Notifications{n.Dataset.Sync(ae.Dataset)}
}

// Notifications counts notifications per subject
func (n *Notifications) Notifications() *models.Series { return n.count("notifications") }

// Applications ranks applications by number of notifications
func (n *Notifications) Applications() []Ranked {
	r, _ := rank(n.rows, ByEvents, func(e models.Event) string { return e.Application })
	return r
}

// postedByDefault counts only posted notifications unless c says otherwise
func postedByDefault(c models.Criteria) models.Criteria {
	if c.Posted == nil {
		posted := true
		c.Posted = &posted
	}
	return c
}

// DailyNotifications counts posted notifications per day (c.Posted overrides).
// With avg the days are averaged per subject and the name gets an "avg_"
// prefix; otherwise the series holds one value per date.
func (n *Notifications) DailyNotifications(c models.Criteria, avg bool) (*models.Series, error) {
	q := dailyQuery{metric: "daily_notifications", criteria: postedByDefault(c), within: countRows}
	if avg {
		q.metric = "avg_daily_notifications"
		q.across = across(false)
	}
	return n.daily(q)
}

// DailyNotificationsSD is the standard deviation of the number of posted notifications per day
func (n *Notifications) DailyNotificationsSD(c models.Criteria) (*models.Series, error) {
	return n.daily(dailyQuery{
		metric: "daily_notifications", criteria: postedByDefault(c),
		within: countRows, across: across(true), sd: true,
	})
}
