// Package processor runs the filter pipeline and every aggregation for one
// dashboard request.
package processor

import (
	"fmt"
	"time"

	"phone-dashboard-go/internal/actionable"
	"phone-dashboard-go/internal/aggregator"
	"phone-dashboard-go/internal/dataset"
	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/logger"
	"phone-dashboard-go/internal/types"
)

type Period struct {
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
	Calls int        `json:"calls"`
	Label string     `json:"label"`
	Week  string     `json:"week,omitempty"`
}

// SummaryView is the summary metrics plus the figures actually shown, which
// are per-week averages when the weekly-average toggle applies.
type SummaryView struct {
	aggregator.Metrics
	DisplayTotal    int                 `json:"display_total"`
	DisplayAnswered int                 `json:"display_answered"`
	DisplayMissed   int                 `json:"display_missed"`
	Averaged        bool                `json:"averaged"`
	Weeks           int                 `json:"weeks"`
	Callback        aggregator.Callback `json:"callback"`
	OutOfHours      int                 `json:"out_of_hours"`
	MissedAlert     bool                `json:"missed_alert"`
}

type Heatmaps struct {
	Location   string             `json:"location"`
	In         aggregator.Heatmap `json:"in"`
	Out        aggregator.Heatmap `json:"out"`
	MaxWait    aggregator.Heatmap `json:"max_wait"`
	AvgWait    aggregator.Heatmap `json:"avg_wait"`
	Missed     aggregator.Heatmap `json:"missed"`
	MissedRate aggregator.Heatmap `json:"missed_rate"`
}

type Dashboard struct {
	DatasetID     string                       `json:"dataset_id"`
	State         filter.State                 `json:"state"`
	Period        Period                       `json:"period"`
	Summary       SummaryView                  `json:"summary"`
	Abandonment   aggregator.AbandonmentReport `json:"abandonment"`
	Followup      aggregator.FollowupReport    `json:"followup"`
	Hourly        []aggregator.HourBucket      `json:"hourly"`
	WeeklyTrend   []aggregator.WeekPoint       `json:"weekly_trend,omitempty"`
	Sites         []aggregator.SiteRow         `json:"sites"`
	Daily         aggregator.DailyTable        `json:"daily"`
	Heatmaps      Heatmaps                     `json:"heatmaps"`
	MissedByQueue aggregator.QueueReport       `json:"missed_by_queue"`
	Staff         []aggregator.StaffRow        `json:"staff"`
	Highlights    []actionable.ActionCard      `json:"highlights"`
	DurationMs    int64                        `json:"duration_ms"`

	// Calls is the filtered working set, used by the exports.
	Calls []types.CallRecord `json:"-"`
}

// Pipeline builds the filter pipeline for ds.
func Pipeline(ds *dataset.Dataset, catalog filter.Catalog) filter.Pipeline {
	return filter.Pipeline{
		Catalog:  catalog,
		Hours:    filter.DefaultOpeningHours(),
		Weeks:    ds.Weeks,
		Holidays: ds.Holidays,
	}
}

// Resolve fills an unset date range with the dataset's extent.
func Resolve(ds *dataset.Dataset, s filter.State) filter.State {
	if s.HasDateRange() || ds.MinDate.IsZero() {
		return s
	}
	return s.WithDateRange(ds.MinDate, ds.MaxDate)
}

// BuildDashboard filters ds with state and computes every dashboard section.
// It never fails; an empty selection yields zero-valued sections.
func BuildDashboard(ds *dataset.Dataset, state filter.State, catalog filter.Catalog) Dashboard {
	log := logger.New().WithField("component", "processor")
	start := time.Now()

	state = Resolve(ds, state)
	p := Pipeline(ds, catalog)
	calls := p.Apply(ds.Records, state)
	in := inbound(calls)

	d := Dashboard{
		DatasetID: ds.ID,
		State:     state,
		Period:    period(calls, state, ds.Weeks),
		Calls:     calls,
	}

	summary := aggregator.Summarize(in, state.ServiceLevelTarget)
	d.Summary = SummaryView{
		Metrics:         summary,
		DisplayTotal:    summary.Total,
		DisplayAnswered: summary.Answered,
		DisplayMissed:   summary.Missed,
		Weeks:           weekCount(state, ds.Weeks),
		Callback:        aggregator.CallbackMetrics(in, state.CallbackHours),
		OutOfHours:      len(p.OutOfHours(ds.Records, state)),
		MissedAlert:     summary.MissedPct > 5,
	}
	if state.WeeklyAverages && state.Week == filter.AllWeeks && d.Summary.Weeks > 1 {
		n := d.Summary.Weeks
		d.Summary.Averaged = true
		d.Summary.DisplayTotal = aggregator.WeeklyAverage(summary.Total, n)
		d.Summary.DisplayAnswered = aggregator.WeeklyAverage(summary.Answered, n)
		d.Summary.DisplayMissed = aggregator.WeeklyAverage(summary.Missed, n)
	}

	d.Abandonment = aggregator.Abandonment(in)
	d.Followup = aggregator.Followup(calls, state.CallbackHours)
	d.Hourly = aggregator.HourlyVolume(calls)
	if len(ds.Weeks) >= 2 {
		trendCalls := p.Apply(ds.Records, state.ForTrend())
		d.WeeklyTrend = aggregator.WeeklyTrend(ds.Weeks, trendCalls, state.ServiceLevelTarget)
	}
	d.Sites = aggregator.SiteBreakdown(in, catalog.Sites, state.ServiceLevelTarget)
	d.Daily = aggregator.DailyBreakdown(calls, state.Daily, state.ServiceLevelTarget)

	heat := catalog.ByLocation(calls, state.HeatmapLocation)
	heatIn := inbound(heat)
	d.Heatmaps = Heatmaps{
		Location:   state.HeatmapLocation,
		In:         aggregator.VolumeHeatmap("in", heatIn),
		Out:        aggregator.VolumeHeatmap("out", outbound(heat)),
		MaxWait:    aggregator.WaitHeatmap(heatIn, aggregator.WaitMax),
		AvgWait:    aggregator.WaitHeatmap(heatIn, aggregator.WaitAvg),
		Missed:     aggregator.MissedHeatmap(heatIn, aggregator.MissedCount),
		MissedRate: aggregator.MissedHeatmap(heatIn, aggregator.MissedRate),
	}
	d.MissedByQueue = aggregator.MissedByQueue(heatIn, catalog)
	d.Staff = aggregator.StaffTable(catalog.ByLocation(calls, state.StaffLocation))

	d.Highlights = actionable.Generate(actionable.Input{
		Summary:  summary,
		Followup: d.Followup,
		Queues:   d.MissedByQueue,
		Callback: d.Summary.Callback,
	})

	d.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(map[string]interface{}{
		"dataset_id":  ds.ID,
		"calls":       len(calls),
		"inbound":     len(in),
		"duration_ms": d.DurationMs,
	}).Debug("dashboard built")
	return d
}

// weekCount is the divisor for weekly averages: every detected week when
// all weeks are selected, otherwise one.
func weekCount(s filter.State, weeks []types.Week) int {
	if s.Week != filter.AllWeeks {
		return 1
	}
	if len(weeks) < 1 {
		return 1
	}
	return len(weeks)
}

func period(calls []types.CallRecord, s filter.State, weeks []types.Week) Period {
	p := Period{Calls: len(calls), Label: "No data"}
	if s.Week >= 0 && s.Week < len(weeks) {
		p.Week = weeks[s.Week].Label
	}
	if len(calls) == 0 {
		return p
	}
	min, max, ok := dataset.DateExtent(calls)
	if !ok {
		p.Label = "No valid dates"
		return p
	}
	p.From, p.To = &min, &max
	p.Label = fmt.Sprintf("%s - %s (%d calls)", min.Format("2 Jan"), max.Format("2 Jan"), len(calls))
	return p
}

func inbound(calls []types.CallRecord) []types.CallRecord {
	return byDirection(calls, types.DirectionIn)
}

func outbound(calls []types.CallRecord) []types.CallRecord {
	return byDirection(calls, types.DirectionOut)
}

func byDirection(calls []types.CallRecord, dir types.Direction) []types.CallRecord {
	out := make([]types.CallRecord, 0, len(calls))
	for _, c := range calls {
		if c.Direction == dir {
			out = append(out, c)
		}
	}
	return out
}
