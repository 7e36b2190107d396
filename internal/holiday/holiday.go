// Package holiday supplies the public-holiday dates used by the opening
// hours filter.
package holiday

import (
	"context"
	"sort"
	"time"

	"phone-dashboard-go/internal/logger"
)

// Set holds holiday dates keyed as YYYY-MM-DD.
type Set map[string]struct{}

func NewSet(dates ...string) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether t's local calendar date is a holiday.
func (s Set) Contains(t time.Time) bool {
	if len(s) == 0 || t.IsZero() {
		return false
	}
	_, ok := s[t.Format("2006-01-02")]
	return ok
}

func (s Set) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ACT public holidays for 2025-2026, used when no source is reachable.
var fallbackDates = []string{
	"2025-01-27", "2025-03-10", "2025-04-18", "2025-04-19", "2025-04-21",
	"2025-04-25", "2025-05-26", "2025-06-09", "2025-10-06", "2025-12-25", "2025-12-26",
	"2026-01-01", "2026-01-26", "2026-03-09", "2026-04-03", "2026-04-04",
	"2026-04-06", "2026-04-27", "2026-06-01", "2026-06-08", "2026-10-05",
	"2026-12-25", "2026-12-28",
}

func Fallback() Set { return NewSet(fallbackDates...) }

// Source returns the holiday dates (YYYY-MM-DD) for one calendar year.
type Source interface {
	Holidays(ctx context.Context, year int) ([]string, error)
}

// Load collects holidays for every year from src. Fetch failures are
// logged and skipped; if nothing at all was collected the bundled
// fallback table is returned instead. Load never fails.
func Load(ctx context.Context, src Source, years []int) Set {
	log := logger.New().WithField("component", "holiday")
	set := Set{}
	if src != nil {
		for _, y := range years {
			dates, err := src.Holidays(ctx, y)
			if err != nil {
				log.WithError(err).WithField("year", y).Warn("holiday fetch failed")
				continue
			}
			for _, d := range dates {
				set[d] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		log.WithField("years", years).Info("using fallback holiday table")
		return Fallback()
	}
	log.WithField("years", years).WithField("holidays", len(set)).Info("public holidays loaded")
	return set
}
