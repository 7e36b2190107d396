package aggregator

import (
	"time"

	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/types"
)

type SiteRow struct {
	Site string `json:"site"`
	Metrics
}

// SiteBreakdown returns one row per site plus a trailing "Total" row over
// every inbound call, including calls matching no site.
func SiteBreakdown(inboundCalls []types.CallRecord, sites []string, slTarget float64) []SiteRow {
	rows := make([]SiteRow, 0, len(sites)+1)
	for _, site := range sites {
		var subset []types.CallRecord
		for _, c := range inboundCalls {
			if filter.SiteMatches(c.OfficeName, site) {
				subset = append(subset, c)
			}
		}
		rows = append(rows, SiteRow{Site: site, Metrics: Summarize(subset, slTarget)})
	}
	rows = append(rows, SiteRow{Site: "Total", Metrics: Summarize(inboundCalls, slTarget)})
	return rows
}

type DayColumn struct {
	Day       string   `json:"day"`
	Metrics   Metrics  `json:"metrics"`
	MissedPct *float64 `json:"missed_pct"`
}

// DailyTable is Monday through Sunday followed by a "Week" column over all
// of calls. Here missed means unanswered, so outbound calls show up too.
type DailyTable struct {
	Direction string      `json:"direction"`
	Columns   []DayColumn `json:"columns"`
}

var displayDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func DailyBreakdown(calls []types.CallRecord, direction string, slTarget float64) DailyTable {
	var subset []types.CallRecord
	for _, c := range calls {
		switch direction {
		case filter.DailyIn:
			if !c.IsInbound() {
				continue
			}
		case filter.DailyOut:
			if !c.IsOutbound() {
				continue
			}
		}
		subset = append(subset, c)
	}

	byDay := map[time.Weekday][]types.CallRecord{}
	for _, c := range subset {
		if c.HasStart() {
			byDay[c.Start.Weekday()] = append(byDay[c.Start.Weekday()], c)
		}
	}
	unanswered := func(r types.CallRecord) bool { return r.Unanswered() }
	t := DailyTable{Direction: direction}
	for _, d := range displayDays {
		t.Columns = append(t.Columns, dayColumn(d.String()[:3], summarize(byDay[d], slTarget, unanswered)))
	}
	t.Columns = append(t.Columns, dayColumn("Week", summarize(subset, slTarget, unanswered)))
	return t
}

func dayColumn(label string, m Metrics) DayColumn {
	col := DayColumn{Day: label, Metrics: m}
	if m.Total > 0 {
		p := m.MissedPct
		col.MissedPct = &p
	}
	return col
}

type WeekPoint struct {
	Label        string  `json:"label"`
	Start        string  `json:"start"`
	Total        int     `json:"total"`
	Missed       int     `json:"missed"`
	MissedPct    float64 `json:"missed_pct"`
	AvgWait      float64 `json:"avg_wait_sec"`
	ServiceLevel float64 `json:"service_level"`
}

// WeeklyTrend summarizes inbound calls per detected week. calls should be
// filtered without any date range or week selection.
func WeeklyTrend(weeks []types.Week, calls []types.CallRecord, slTarget float64) []WeekPoint {
	in := inbound(calls)
	out := make([]WeekPoint, 0, len(weeks))
	for _, w := range weeks {
		var subset []types.CallRecord
		for _, c := range in {
			if c.HasStart() && w.Contains(c.Start) {
				subset = append(subset, c)
			}
		}
		m := Summarize(subset, slTarget)
		p := WeekPoint{
			Label:        w.Label,
			Start:        w.Start.Format("2006-01-02"),
			Total:        m.Total,
			Missed:       m.Missed,
			MissedPct:    m.MissedPct,
			ServiceLevel: m.ServiceLevel,
		}
		if m.AvgWait != nil {
			p.AvgWait = *m.AvgWait
		}
		out = append(out, p)
	}
	return out
}
