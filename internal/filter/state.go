package filter

import (
	"time"

	"phone-dashboard-go/internal/timenorm"
)

// AllWeeks selects every detected week.
const AllWeeks = -1

const (
	DailyAll = "all"
	DailyIn  = "in"
	DailyOut = "out"
)

// State is the full set of user selections for one view. It is a value:
// the With methods return a modified copy.
type State struct {
	From               time.Time `json:"from,omitempty"`
	To                 time.Time `json:"to,omitempty"`
	Week               int       `json:"week"`
	Location           string    `json:"location"`
	Queue              string    `json:"queue"`
	StaffLocation      string    `json:"staff_location"`
	HeatmapLocation    string    `json:"heatmap_location"`
	Daily              string    `json:"daily"`
	ExcludeHolidays    bool      `json:"exclude_holidays"`
	CallbackHours      float64   `json:"callback_hours"`
	ServiceLevelTarget float64   `json:"service_level_target"`
	WeeklyAverages     bool      `json:"weekly_averages"`
}

func DefaultState() State {
	return State{
		Week:               AllWeeks,
		Location:           LocationAll,
		Queue:              QueueAll,
		StaffLocation:      LocationAll,
		HeatmapLocation:    LocationAll,
		Daily:              DailyAll,
		ExcludeHolidays:    true,
		CallbackHours:      24,
		ServiceLevelTarget: 90,
	}
}

// WithDateRange sets the range to whole days, from's midnight to to's
// 23:59:59. Bounds given in the wrong order are swapped.
func (s State) WithDateRange(from, to time.Time) State {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	s.From, s.To = time.Time{}, time.Time{}
	if !from.IsZero() {
		s.From = timenorm.StartOfDay(from)
	}
	if !to.IsZero() {
		s.To = timenorm.EndOfDay(to)
	}
	return s
}

// HasDateRange reports whether both bounds are set.
func (s State) HasDateRange() bool { return !s.From.IsZero() && !s.To.IsZero() }

func (s State) WithWeek(i int) State {
	if i < 0 {
		i = AllWeeks
	}
	s.Week = i
	return s
}

func (s State) WithLocation(key string) State        { s.Location = key; return s }
func (s State) WithQueue(key string) State           { s.Queue = key; return s }
func (s State) WithStaffLocation(key string) State   { s.StaffLocation = key; return s }
func (s State) WithHeatmapLocation(key string) State { s.HeatmapLocation = key; return s }
func (s State) WithDaily(dir string) State           { s.Daily = dir; return s }
func (s State) WithHolidayExclusion(on bool) State   { s.ExcludeHolidays = on; return s }
func (s State) WithWeeklyAverages(on bool) State     { s.WeeklyAverages = on; return s }

func (s State) WithCallbackHours(h float64) State {
	if h > 0 {
		s.CallbackHours = h
	}
	return s
}

func (s State) WithServiceLevelTarget(sec float64) State {
	if sec > 0 {
		s.ServiceLevelTarget = sec
	}
	return s
}

// ForTrend drops the date range and week selection; the weekly trend always
// spans every detected week.
func (s State) ForTrend() State {
	s.From, s.To = time.Time{}, time.Time{}
	s.Week = AllWeeks
	return s
}
