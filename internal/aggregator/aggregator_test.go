package aggregator

import (
	"math"
	"testing"
	"time"

	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/types"
)

func at(d, h, m int) time.Time {
	// January 2026: the 12th is a Monday.
	return time.Date(2026, 1, d, h, m, 0, 0, time.UTC)
}

func in(start time.Time, tta, dur float64) types.CallRecord {
	return types.CallRecord{Start: start, Direction: types.DirectionIn, TimeToAnswer: tta, Duration: dur}
}

func TestSummarizeMissedScenario(t *testing.T) {
	var calls []types.CallRecord
	for i := 0; i < 8; i++ {
		calls = append(calls, in(at(12, 9, i), 20, 100))
	}
	for i := 0; i < 2; i++ {
		c := in(at(12, 10, i), 0, 40)
		c.QueueName = "Appointments"
		calls = append(calls, c)
	}
	m := Summarize(calls, 90)
	if m.Missed != 2 {
		t.Errorf("expected 2 missed, got %d", m.Missed)
	}
	if m.MissedPct != 20.0 {
		t.Errorf("expected 20.0 missed pct, got %v", m.MissedPct)
	}
	if m.Answered+m.Unanswered != m.Total {
		t.Errorf("expected answered+unanswered == total, got %d+%d != %d", m.Answered, m.Unanswered, m.Total)
	}
	if m.ServiceLevel != 80 {
		t.Errorf("expected service level 80, got %v", m.ServiceLevel)
	}
	if m.AvgWait == nil || *m.AvgWait != 20 {
		t.Errorf("expected avg wait 20, got %v", m.AvgWait)
	}
	if m.AvgCallLength == nil || *m.AvgCallLength != 80 {
		t.Errorf("expected avg call length 80, got %v", m.AvgCallLength)
	}
}

func TestSummarize(t *testing.T) {
	queued := func(c types.CallRecord) types.CallRecord { c.QueueName = "General Enquiries"; return c }
	tests := []struct {
		name       string
		calls      []types.CallRecord
		target     float64
		wantMissed int
		wantSL     float64
		wantMax    *float64
	}{
		{"empty", nil, 90, 0, 0, nil},
		{"unqueued unanswered is not missed", []types.CallRecord{in(at(12, 9, 0), 0, 10)}, 90, 0, 0, nil},
		{"queued unanswered is missed", []types.CallRecord{queued(in(at(12, 9, 0), 0, 10)), in(at(12, 9, 5), 30, 60)}, 90, 1, 50, ptr(30)},
		{"target is inclusive", []types.CallRecord{in(at(12, 9, 0), 90, 100), in(at(12, 9, 5), 91, 100)}, 90, 0, 50, ptr(91)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Summarize(tt.calls, tt.target)
			if m.Missed != tt.wantMissed {
				t.Errorf("expected %d missed, got %d", tt.wantMissed, m.Missed)
			}
			if m.Missed > m.Total {
				t.Errorf("missed %d exceeds total %d", m.Missed, m.Total)
			}
			if m.ServiceLevel != tt.wantSL {
				t.Errorf("expected service level %v, got %v", tt.wantSL, m.ServiceLevel)
			}
			if m.ServiceLevel < 0 || m.ServiceLevel > 100 {
				t.Errorf("service level out of range: %v", m.ServiceLevel)
			}
			if (tt.wantMax == nil) != (m.MaxWait == nil) || (tt.wantMax != nil && *tt.wantMax != *m.MaxWait) {
				t.Errorf("expected max wait %v, got %v", tt.wantMax, m.MaxWait)
			}
		})
	}
}

func ptr(v float64) *float64 { return &v }

func caller(num string, start time.Time, tta float64) types.CallRecord {
	c := in(start, tta, 30)
	c.OriginNumber = num
	return c
}

func TestCallbackMetrics(t *testing.T) {
	calls := []types.CallRecord{
		caller("0411", at(12, 9, 0), 10),
		caller("0411", at(12, 15, 0), 10),
		caller("0422", at(12, 9, 0), 10),
		caller("0433", at(12, 9, 0), 10),
		caller("0433", at(14, 9, 0), 10),
		caller("0", at(12, 9, 0), 10),
		caller("", at(12, 9, 0), 10),
	}
	got := CallbackMetrics(calls, 24)
	if got.UniqueCallers != 3 {
		t.Errorf("expected 3 unique callers, got %d", got.UniqueCallers)
	}
	if got.CallersWithCallback != 1 {
		t.Errorf("expected 1 caller with callback, got %d", got.CallersWithCallback)
	}
	if math.Abs(got.CallbackRate+got.FCRRate-100) > 1e-9 {
		t.Errorf("expected callback + fcr == 100, got %v + %v", got.CallbackRate, got.FCRRate)
	}
	if wide := CallbackMetrics(calls, 48); wide.CallersWithCallback != 2 {
		t.Errorf("expected 2 callers with a 48h window, got %d", wide.CallersWithCallback)
	}
}

func TestCallbackSingleCallNeverCounts(t *testing.T) {
	got := CallbackMetrics([]types.CallRecord{caller("0411", at(12, 9, 0), 0)}, 24)
	if got.CallersWithCallback != 0 || got.CallbackRate != 0 || got.FCRRate != 100 {
		t.Errorf("expected no callback and fcr 100, got %+v", got)
	}
	if empty := CallbackMetrics(nil, 24); empty.CallbackRate != 0 || empty.FCRRate != 0 {
		t.Errorf("expected zero rates for no callers, got %+v", empty)
	}
}

func TestFollowupPersistent(t *testing.T) {
	calls := []types.CallRecord{
		caller("0411", at(12, 9, 0), 0),
		caller("0411", at(12, 12, 0), 15),
	}
	rep := Followup(calls, 24)
	if rep.Persistent != 1 || rep.Lost != 0 {
		t.Fatalf("expected 1 persistent 0 lost, got %d/%d", rep.Persistent, rep.Lost)
	}
	if rep.Attempts.Two != 1 {
		t.Errorf("expected attempts == 2, got %+v", rep.Attempts)
	}
	if rep.AvgAttempts == nil || *rep.AvgAttempts != 2 {
		t.Errorf("expected avg attempts 2, got %v", rep.AvgAttempts)
	}
}

func TestFollowupLost(t *testing.T) {
	calls := []types.CallRecord{
		caller("0411", at(12, 14, 20), 0),
		caller("0411", at(14, 10, 0), 20),
	}
	rep := Followup(calls, 24)
	if rep.Lost != 1 || rep.Persistent != 0 {
		t.Fatalf("expected 1 lost 0 persistent, got %d/%d", rep.Lost, rep.Persistent)
	}
	if rep.LostByHour[14] != 1 {
		t.Errorf("expected lost at hour 14, got %v", rep.LostByHour)
	}
	peak, ok := rep.PeakLostHour()
	if !ok || peak.Hour != 14 || peak.Count != 1 {
		t.Errorf("expected peak 14 (1), got %+v", peak)
	}
	if rep.AvgMissedWait == nil || *rep.AvgMissedWait != 30 {
		t.Errorf("expected avg missed wait 30, got %v", rep.AvgMissedWait)
	}
}

func TestFollowupIgnoresEarlierCalls(t *testing.T) {
	calls := []types.CallRecord{
		caller("0411", at(12, 9, 0), 10),
		caller("0411", at(12, 10, 0), 0),
		caller("0411", at(12, 11, 0), 0),
		caller("0411", at(12, 12, 0), 10),
		caller("0499", at(12, 9, 0), 10),
	}
	rep := Followup(calls, 24)
	if rep.Persistent != 1 || rep.Attempts.ThreePlus != 1 {
		t.Errorf("expected one persistent caller with 3 attempts, got %+v", rep)
	}
}

func TestFollowupTopHours(t *testing.T) {
	var calls []types.CallRecord
	hours := []int{8, 9, 9, 10, 11, 12, 13, 13}
	for i, h := range hours {
		calls = append(calls, caller(string(rune('a'+i)), at(12, h, 0), 0))
	}
	rep := Followup(calls, 24)
	if len(rep.TopLostHours) != 5 {
		t.Fatalf("expected top 5 hours, got %d", len(rep.TopLostHours))
	}
	want := []int{9, 13, 8, 10, 11}
	for i, h := range want {
		if rep.TopLostHours[i].Hour != h {
			t.Errorf("expected hour %d at %d, got %d", h, i, rep.TopLostHours[i].Hour)
		}
	}
}

func TestAbandonment(t *testing.T) {
	calls := []types.CallRecord{
		in(at(12, 9, 0), 0, 10),
		in(at(12, 9, 0), 0, 35),
		in(at(12, 9, 0), 0, 59),
		in(at(12, 9, 0), 0, 60),
		in(at(12, 9, 0), 0, 300),
		in(at(12, 9, 0), 20, 500),
		{Start: at(12, 9, 0), Direction: types.DirectionOut, Duration: 5},
	}
	rep := Abandonment(calls)
	if rep.Total != 5 {
		t.Fatalf("expected 5 abandoned, got %d", rep.Total)
	}
	want := []int{1, 2, 1, 0, 1}
	for i, n := range want {
		if rep.Buckets[i].Count != n {
			t.Errorf("expected %d in %s, got %d", n, rep.Buckets[i].Label, rep.Buckets[i].Count)
		}
	}
	if rep.Buckets[0].Pct != 20 {
		t.Errorf("expected 20%% in first bucket, got %v", rep.Buckets[0].Pct)
	}
	if empty := Abandonment(nil); empty.AvgWait != nil || len(empty.Buckets) != 5 {
		t.Errorf("expected empty report with 5 buckets, got %+v", empty)
	}
}

func TestVolumeHeatmap(t *testing.T) {
	calls := []types.CallRecord{
		in(at(12, 7, 30), 10, 10), // Mon slot 15
		in(at(12, 7, 45), 10, 10), // Mon slot 15
		in(at(17, 12, 0), 10, 10), // Sat slot 24
		in(at(12, 7, 29), 10, 10), // slot 14, outside
		in(at(12, 18, 0), 10, 10), // slot 36, outside
		in(at(18, 10, 0), 10, 10), // Sunday, outside
		{Direction: types.DirectionIn},
	}
	h := VolumeHeatmap("in", calls)
	if h.Sum() != 3 {
		t.Errorf("expected cell counts to sum to 3, got %d", h.Sum())
	}
	if len(h.Cells) != LastSlot-FirstSlot+1 || len(h.Cells[0]) != 6 {
		t.Fatalf("unexpected grid %dx%d", len(h.Cells), len(h.Cells[0]))
	}
	if c := h.Cells[0][0]; c.Count != 2 || c.Level != 7 {
		t.Errorf("expected busiest cell count 2 level 7, got %+v", c)
	}
	if c := h.Cells[24-FirstSlot][5]; c.Count != 1 || c.Level != 4 {
		t.Errorf("expected Saturday cell count 1 level 4, got %+v", c)
	}
	if c := h.Cells[1][1]; c.Level != 0 {
		t.Errorf("expected empty cell level 0, got %d", c.Level)
	}
	if h.Slots[0] != "07:30" || h.Days[0] != "Mon" || h.Days[5] != "Sat" {
		t.Errorf("unexpected axes %v %v", h.Slots[0], h.Days)
	}
}

func TestWaitHeatmap(t *testing.T) {
	calls := []types.CallRecord{
		in(at(13, 9, 0), 20, 60),
		in(at(13, 9, 10), 100, 160),
		in(at(13, 9, 20), 0, 60),
	}
	row, col := 18-FirstSlot, 1
	if c := WaitHeatmap(calls, WaitMax).Cells[row][col]; c.Value == nil || *c.Value != 100 || c.Level != 4 {
		t.Errorf("expected max 100 level 4, got %+v", c)
	}
	if c := WaitHeatmap(calls, WaitAvg).Cells[row][col]; c.Value == nil || *c.Value != 60 || c.Level != 3 {
		t.Errorf("expected avg 60 level 3, got %+v", c)
	}
	if c := WaitHeatmap(calls, WaitAvg).Cells[0][0]; c.Value != nil || c.Level != 0 {
		t.Errorf("expected empty cell without value, got %+v", c)
	}
}

func TestMissedHeatmap(t *testing.T) {
	calls := []types.CallRecord{
		in(at(13, 9, 0), 0, 60),
		in(at(13, 9, 10), 10, 60),
		in(at(13, 9, 20), 10, 60),
		in(at(13, 9, 25), 10, 60),
		in(at(14, 9, 0), 10, 60),
	}
	row := 18 - FirstSlot
	rate := MissedHeatmap(calls, MissedRate)
	if c := rate.Cells[row][1]; c.Value == nil || *c.Value != 25 || c.Level != 3 {
		t.Errorf("expected rate 25 level 3, got %+v", c)
	}
	if c := rate.Cells[row][2]; c.Value == nil || *c.Value != 0 || c.Level != 0 {
		t.Errorf("expected rate 0 level 0, got %+v", c)
	}
	if c := rate.Cells[0][0]; c.Value != nil || c.Level != 0 {
		t.Errorf("expected no value for a cell without calls, got %+v", c)
	}
	count := MissedHeatmap(calls, MissedCount)
	if c := count.Cells[row][1]; c.Missed != 1 || c.Level != 7 {
		t.Errorf("expected one missed at level 7, got %+v", c)
	}
}

func TestStaffTable(t *testing.T) {
	calls := []types.CallRecord{
		{UserName: "Alice", Direction: types.DirectionIn, TimeToAnswer: 10, Duration: 70},
		{UserName: "Bob", Direction: types.DirectionOut, Duration: 120},
		{UserName: "Bob", Direction: types.DirectionOut, Duration: 0},
		{UserName: "Alice", Direction: types.DirectionIn, TimeToAnswer: 0, Duration: 30},
		{UserName: "Cara", Direction: types.DirectionIn, TimeToAnswer: 5, Duration: 5},
		{UserName: "0", Direction: types.DirectionIn},
		{UserName: "", Direction: types.DirectionIn},
	}
	rows := StaffTable(calls)
	if len(rows) != 3 {
		t.Fatalf("expected 3 staff, got %d", len(rows))
	}
	if rows[0].Name != "Alice" || rows[1].Name != "Bob" || rows[2].Name != "Cara" {
		t.Errorf("unexpected order %s %s %s", rows[0].Name, rows[1].Name, rows[2].Name)
	}
	a := rows[0]
	if a.CallsIn != 2 || a.TotalCalls != 2 || *a.AvgPickup != 10 || *a.AvgCallLengthIn != 60 || a.AvgCallLengthOut != nil {
		t.Errorf("unexpected Alice row %+v", a)
	}
	if b := rows[1]; b.CallsOut != 2 || *b.AvgCallLengthOut != 120 || b.AvgPickup != nil {
		t.Errorf("unexpected Bob row %+v", b)
	}
	if c := rows[2]; c.AvgCallLengthIn != nil {
		t.Errorf("expected no positive call length for Cara, got %v", *c.AvgCallLengthIn)
	}
}

func TestSiteBreakdown(t *testing.T) {
	calls := []types.CallRecord{
		{OfficeName: "Crace Clinic", Direction: types.DirectionIn, TimeToAnswer: 10},
		{OfficeName: "Denman", Direction: types.DirectionIn, QueueName: "Appointments"},
		{OfficeName: "Elsewhere", Direction: types.DirectionIn, TimeToAnswer: 10},
	}
	rows := SiteBreakdown(calls, []string{"Crace", "Denman", "Lyneham"}, 90)
	if len(rows) != 4 || rows[3].Site != "Total" {
		t.Fatalf("expected 3 sites plus total, got %+v", rows)
	}
	if rows[0].Total != 1 || rows[1].Missed != 1 || rows[2].Total != 0 || rows[3].Total != 3 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestDailyBreakdown(t *testing.T) {
	calls := []types.CallRecord{
		in(at(12, 9, 0), 10, 60),
		in(at(12, 9, 5), 0, 60),
		{Start: at(13, 9, 0), Direction: types.DirectionOut, Duration: 30},
	}
	all := DailyBreakdown(calls, filter.DailyAll, 90)
	if len(all.Columns) != 8 || all.Columns[0].Day != "Mon" || all.Columns[6].Day != "Sun" || all.Columns[7].Day != "Week" {
		t.Fatalf("unexpected columns %+v", all.Columns)
	}
	mon := all.Columns[0]
	if mon.Metrics.Total != 2 || mon.Metrics.Missed != 1 || mon.MissedPct == nil || *mon.MissedPct != 50 {
		t.Errorf("unexpected Monday column %+v", mon)
	}
	if all.Columns[1].Metrics.Missed != 1 {
		t.Errorf("expected unanswered outbound to count as missed, got %+v", all.Columns[1].Metrics)
	}
	if all.Columns[2].MissedPct != nil || all.Columns[2].Metrics.AvgWait != nil {
		t.Errorf("expected empty Wednesday to have no missed pct or waits")
	}
	if week := all.Columns[7].Metrics; week.Total != 3 {
		t.Errorf("expected week total 3, got %d", week.Total)
	}
	if out := DailyBreakdown(calls, filter.DailyOut, 90); out.Columns[7].Metrics.Total != 1 {
		t.Errorf("expected 1 outbound call, got %d", out.Columns[7].Metrics.Total)
	}
}

func TestWeeklyTrend(t *testing.T) {
	weeks := []types.Week{
		{Start: at(12, 0, 0), End: at(18, 23, 59), Label: "Week of 12 Jan"},
		{Start: at(19, 0, 0), End: at(25, 23, 59), Label: "Week of 19 Jan"},
	}
	missed := in(at(19, 9, 0), 0, 10)
	missed.QueueName = "Appointments"
	calls := []types.CallRecord{
		in(at(12, 9, 0), 30, 60),
		in(at(13, 9, 0), 60, 60),
		missed,
		in(at(20, 9, 0), 100, 160),
		{Start: at(12, 9, 0), Direction: types.DirectionOut},
	}
	pts := WeeklyTrend(weeks, calls, 90)
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[0].Total != 2 || pts[0].AvgWait != 45 || pts[0].ServiceLevel != 100 {
		t.Errorf("unexpected first week %+v", pts[0])
	}
	if pts[1].Missed != 1 || pts[1].MissedPct != 50 || pts[1].ServiceLevel != 0 {
		t.Errorf("unexpected second week %+v", pts[1])
	}
}

func TestHourlyVolume(t *testing.T) {
	calls := []types.CallRecord{
		in(at(12, 7, 5), 1, 1),
		in(at(12, 12, 5), 1, 1),
		{Start: at(12, 18, 59), Direction: types.DirectionOut},
		in(at(12, 19, 0), 1, 1),
	}
	hours := HourlyVolume(calls)
	if len(hours) != 12 || hours[0].Label != "7AM" || hours[5].Label != "12PM" || hours[11].Label != "6PM" {
		t.Fatalf("unexpected hours %+v", hours)
	}
	if hours[0].In != 1 || hours[5].In != 1 || hours[11].Out != 1 {
		t.Errorf("unexpected counts %+v", hours)
	}
}

func TestMissedByQueue(t *testing.T) {
	q := func(name string, tta float64) types.CallRecord {
		return types.CallRecord{Direction: types.DirectionIn, QueueName: name, TimeToAnswer: tta}
	}
	calls := []types.CallRecord{
		q("Appointments", 0), q("Appointments", 10), q("Appointments", 10), q("Appointments", 10),
		q("General Enquiries", 10),
		q("", 0),
	}
	rep := MissedByQueue(calls, filter.DefaultCatalog())
	if len(rep.Queues) != 5 {
		t.Fatalf("expected 5 queue rows, got %d", len(rep.Queues))
	}
	appt := rep.Queues[0]
	if appt.Name != "Appointments" || appt.Missed != 1 || appt.MissRate != 25 || appt.Severity != SeverityCritical {
		t.Errorf("unexpected appointments row %+v", appt)
	}
	if none := rep.Queues[4]; none.Name != "No Queue" || none.Total != 1 || none.Missed != 1 {
		t.Errorf("unexpected no-queue row %+v", none)
	}
	if rep.Total.Total != 6 || rep.Total.Missed != 2 || rep.Total.Answered != 4 {
		t.Errorf("unexpected total %+v", rep.Total)
	}
}

func TestWeeklyAverage(t *testing.T) {
	tests := []struct{ n, weeks, want int }{
		{10, 0, 10},
		{10, 1, 10},
		{10, 4, 3},
		{10, 3, 3},
		{5, 2, 3},
	}
	for _, tt := range tests {
		if got := WeeklyAverage(tt.n, tt.weeks); got != tt.want {
			t.Errorf("WeeklyAverage(%d, %d): expected %d, got %d", tt.n, tt.weeks, tt.want, got)
		}
	}
}
