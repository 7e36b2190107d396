package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"phone-dashboard-go/internal/dataset"
	"phone-dashboard-go/internal/filter"
)

var ErrInvalidQuery = errors.New("invalid query")

const dateLayout = "2006-01-02"

func badParam(name, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidQuery, name, value)
}

// ParseState applies the query parameters on top of base. Absent
// parameters keep base's value; present but invalid ones are an error.
func ParseState(q url.Values, ds *dataset.Dataset, catalog filter.Catalog, base filter.State) (filter.State, error) {
	s := base
	loc := ds.Location
	if loc == nil {
		loc = time.Local
	}

	var from, to time.Time
	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return s, badParam("from", v)
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return s, badParam("to", v)
		}
		to = t
	}
	if !from.IsZero() || !to.IsZero() {
		// a single bound is completed from the dataset's extent
		if from.IsZero() {
			from = ds.MinDate
		}
		if to.IsZero() {
			to = ds.MaxDate
		}
		s = s.WithDateRange(from, to)
	}

	if v := q.Get("week"); v != "" && v != "all" {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 || i >= len(ds.Weeks) {
			return s, badParam("week", v)
		}
		s = s.WithWeek(i)
	}

	locations := []struct {
		name string
		set  func(filter.State, string) filter.State
	}{
		{"location", filter.State.WithLocation},
		{"staff_location", filter.State.WithStaffLocation},
		{"heatmap_location", filter.State.WithHeatmapLocation},
	}
	for _, l := range locations {
		v := strings.ToLower(q.Get(l.name))
		if v == "" {
			continue
		}
		if !catalog.KnownLocation(v) {
			return s, badParam(l.name, v)
		}
		s = l.set(s, v)
	}

	if v := strings.ToLower(q.Get("queue")); v != "" {
		if !catalog.KnownQueue(v) {
			return s, badParam("queue", v)
		}
		s = s.WithQueue(v)
	}

	if v := strings.ToLower(q.Get("daily")); v != "" {
		switch v {
		case filter.DailyAll, filter.DailyIn, filter.DailyOut:
			s = s.WithDaily(v)
		default:
			return s, badParam("daily", v)
		}
	}

	if v := q.Get("holidays"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return s, badParam("holidays", v)
		}
		s = s.WithHolidayExclusion(on)
	}
	if v := q.Get("weekly_avg"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return s, badParam("weekly_avg", v)
		}
		s = s.WithWeeklyAverages(on)
	}

	if v := q.Get("callback_hours"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || !(h > 0) {
			return s, badParam("callback_hours", v)
		}
		s = s.WithCallbackHours(h)
	}
	if v := q.Get("sl_target"); v != "" {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || !(sec > 0) {
			return s, badParam("sl_target", v)
		}
		s = s.WithServiceLevelTarget(sec)
	}

	return s, nil
}
