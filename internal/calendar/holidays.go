package calendar

import (
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/be"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// HolidaySet answers whether a calendar date is a public holiday
type HolidaySet interface {
	Contains(t time.Time) bool
}

// Belgium is the public holiday calendar of Belgium
type Belgium struct {
	mu  sync.Mutex
	cal *cal.BusinessCalendar
}

// NewBelgium creates a calendar loaded with the Belgian public holidays
func NewBelgium() *Belgium {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(be.Holidays...)
	return &Belgium{cal: c}
}

// Contains reports whether the date of t is a Belgian public holiday
func (b *Belgium) Contains(t time.Time) bool {
	_, ok := b.Name(t)
	return ok
}

// Name returns the holiday name for the date of t
func (b *Belgium) Name(t time.Time) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	actual, _, h := b.cal.IsHoliday(models.DateOf(t))
	if !actual || h == nil {
		return "", false
	}
	return h.Name, true
}
