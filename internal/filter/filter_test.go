package filter

import (
	"reflect"
	"testing"
	"time"

	"phone-dashboard-go/internal/holiday"
	"phone-dashboard-go/internal/types"
)

var loc = time.UTC

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

func TestOpeningHours(t *testing.T) {
	hours := DefaultOpeningHours()
	hols := holiday.NewSet("2026-01-26")
	tests := []struct {
		name    string
		t       time.Time
		exclude bool
		want    bool
	}{
		{"weekday open bound", at(2026, 1, 14, 7, 30), true, true},
		{"weekday before open", at(2026, 1, 14, 7, 29), true, false},
		{"weekday close bound", at(2026, 1, 14, 17, 30), true, true},
		{"weekday after close", at(2026, 1, 14, 17, 31), true, false},
		{"saturday morning", at(2026, 1, 17, 10, 0), true, true},
		{"saturday 13:00", at(2026, 1, 17, 13, 0), true, false},
		{"saturday 12:30", at(2026, 1, 17, 12, 30), true, true},
		{"sunday", at(2026, 1, 18, 10, 0), true, false},
		{"holiday excluded", at(2026, 1, 26, 10, 0), true, false},
		{"holiday kept when toggle off", at(2026, 1, 26, 10, 0), false, true},
		{"zero time", time.Time{}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hours.Within(tt.t, hols, tt.exclude); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStateWithDateRange(t *testing.T) {
	s := DefaultState().WithDateRange(at(2026, 1, 20, 15, 0), at(2026, 1, 12, 9, 0))
	if !s.From.Equal(at(2026, 1, 12, 0, 0)) {
		t.Errorf("expected swapped start 12 Jan 00:00, got %v", s.From)
	}
	if s.To.Hour() != 23 || s.To.Minute() != 59 || s.To.Second() != 59 || s.To.Day() != 20 {
		t.Errorf("expected end 20 Jan 23:59:59, got %v", s.To)
	}
	if !s.HasDateRange() {
		t.Error("expected date range set")
	}
	if DefaultState().HasDateRange() {
		t.Error("expected default state without date range")
	}
}

func TestStateIsValue(t *testing.T) {
	base := DefaultState()
	changed := base.WithLocation("crace").WithQueue("general").WithCallbackHours(48)
	if base.Location != LocationAll || base.Queue != QueueAll || base.CallbackHours != 24 {
		t.Errorf("expected base state untouched, got %+v", base)
	}
	if changed.Location != "crace" || changed.Queue != "general" || changed.CallbackHours != 48 {
		t.Errorf("unexpected changed state %+v", changed)
	}
	if base.WithServiceLevelTarget(0).ServiceLevelTarget != 90 {
		t.Error("expected non-positive service level target to be ignored")
	}
}

func sampleRecords() []types.CallRecord {
	return []types.CallRecord{
		{CallID: "1", Start: at(2026, 1, 12, 9, 0), Direction: types.DirectionIn, OfficeName: "Crace Clinic", QueueName: "Appointments"},
		{CallID: "2", Start: at(2026, 1, 12, 9, 5), Direction: types.DirectionInternal, OfficeName: "Crace Clinic"},
		{CallID: "3", Start: at(2026, 1, 13, 10, 0), Direction: types.DirectionIn, OfficeName: "Denman Prospect", UserName: "nurse 1"},
		{CallID: "4", Start: at(2026, 1, 17, 13, 0), Direction: types.DirectionIn, OfficeName: "Lyneham"},
		{CallID: "5", Start: at(2026, 1, 19, 11, 0), Direction: types.DirectionIn, OfficeName: "Denman Prospect"},
		{CallID: "6", Start: at(2026, 1, 20, 11, 0), Direction: types.DirectionOut, OfficeName: "Practice Support"},
		{CallID: "7", Direction: types.DirectionIn, OfficeName: "Crace"},
		{CallID: "8", Start: at(2026, 1, 14, 8, 0), Direction: types.DirectionIn, OfficeName: "MANAGEMENT / SUPPORT", QueueName: "General Enquiries"},
	}
}

func testPipeline() Pipeline {
	return Pipeline{
		Catalog: DefaultCatalog(),
		Hours:   DefaultOpeningHours(),
		Weeks: []types.Week{
			{Start: at(2026, 1, 12, 0, 0), End: at(2026, 1, 18, 23, 59).Add(59 * time.Second), Label: "Week of 12 Jan"},
			{Start: at(2026, 1, 19, 0, 0), End: at(2026, 1, 25, 23, 59).Add(59 * time.Second), Label: "Week of 19 Jan"},
		},
		Holidays: holiday.Set{},
	}
}

func ids(records []types.CallRecord) []string {
	out := []string{}
	for _, r := range records {
		out = append(out, r.CallID)
	}
	return out
}

func TestPipelineApply(t *testing.T) {
	p := testPipeline()
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"defaults", DefaultState(), []string{"1", "5", "6", "8"}},
		{"date range", DefaultState().WithDateRange(at(2026, 1, 19, 0, 0), at(2026, 1, 20, 0, 0)), []string{"5", "6"}},
		{"week", DefaultState().WithWeek(0), []string{"1", "8"}},
		{"week out of range", DefaultState().WithWeek(5), []string{}},
		{"location crace", DefaultState().WithLocation("crace"), []string{"1"}},
		{"location management", DefaultState().WithLocation("management"), []string{"8"}},
		{"location practice", DefaultState().WithLocation("practice"), []string{"6"}},
		{"unknown location", DefaultState().WithLocation("mars"), []string{"1", "5", "6", "8"}},
		{"queue appointments", DefaultState().WithQueue("appointments"), []string{"1"}},
		{"no queue", DefaultState().WithQueue(QueueNone), []string{"5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(p.Apply(sampleRecords(), tt.state))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPipelineIdempotent(t *testing.T) {
	p := testPipeline()
	s := DefaultState().WithLocation("denman")
	records := sampleRecords()
	first := p.Apply(records, s)
	second := p.Apply(records, s)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output, got %v and %v", ids(first), ids(second))
	}
	if again := p.Apply(first, s); !reflect.DeepEqual(again, first) {
		t.Errorf("expected filtering the output to change nothing, got %v", ids(again))
	}
}

func TestPipelineStageOrder(t *testing.T) {
	p := testPipeline()
	s := DefaultState().WithDateRange(at(2026, 1, 1, 0, 0), at(2026, 2, 1, 0, 0)).WithWeek(0).WithLocation("crace").WithQueue("general")
	var names []string
	for _, st := range p.Stages(s) {
		names = append(names, st.Name)
	}
	want := []string{"date_range", "week", "direction", "opening_hours", "internal_extension", "location", "queue"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestOutOfHours(t *testing.T) {
	p := testPipeline()
	got := ids(p.OutOfHours(sampleRecords(), DefaultState()))
	want := []string{"4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	if !c.IsInternal("CRACE - REC 1") {
		t.Error("expected case-insensitive internal match")
	}
	if c.IsInternal("Crace - Rec 10") {
		t.Error("expected exact name match only")
	}
	custom := c.WithInternalExtensions([]string{"Desk"})
	if !custom.IsInternal("desk") || custom.IsInternal("Nurse 1") {
		t.Error("expected custom list to replace the default")
	}
	if !c.IsInternal("Nurse 1") {
		t.Error("expected original catalog unchanged")
	}
	got := ids(c.ByLocation(sampleRecords(), "denman"))
	if want := []string{"3", "5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
