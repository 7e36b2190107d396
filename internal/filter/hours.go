package filter

import (
	"time"

	"phone-dashboard-go/internal/holiday"
	"phone-dashboard-go/internal/timenorm"
)

// Window is an inclusive span of minutes from midnight.
type Window struct {
	Open  int
	Close int
}

// OpeningHours is indexed by time.Weekday. A nil entry means closed.
type OpeningHours [7]*Window

func DefaultOpeningHours() OpeningHours {
	weekday := &Window{Open: 7*60 + 30, Close: 17*60 + 30}
	return OpeningHours{
		time.Sunday:    nil,
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {Open: 9 * 60, Close: 12*60 + 30},
	}
}

// Within reports whether t falls inside opening hours. Holidays count as
// closed only when excludeHolidays is set. The zero time is never within.
func (h OpeningHours) Within(t time.Time, holidays holiday.Set, excludeHolidays bool) bool {
	if t.IsZero() {
		return false
	}
	if excludeHolidays && holidays.Contains(t) {
		return false
	}
	w := h[t.Weekday()]
	if w == nil {
		return false
	}
	m := timenorm.MinuteOfDay(t)
	return m >= w.Open && m <= w.Close
}
