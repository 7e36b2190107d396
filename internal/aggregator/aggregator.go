// Package aggregator computes dashboard metrics from an already filtered
// call set. Every function is pure and returns a zero-valued result for
// empty input.
package aggregator

import (
	"math"

	"phone-dashboard-go/internal/types"
)

// Metrics is the shared shape of the summary, site, daily and weekly rows.
// Wait and length figures are nil when no call contributes to them.
type Metrics struct {
	Total         int      `json:"total"`
	Answered      int      `json:"answered"`
	Unanswered    int      `json:"unanswered"`
	Missed        int      `json:"missed"`
	MissedPct     float64  `json:"missed_pct"`
	AvgWait       *float64 `json:"avg_wait_sec"`
	MaxWait       *float64 `json:"max_wait_sec"`
	AvgCallLength *float64 `json:"avg_call_length_sec"`
	WithinTarget  int      `json:"within_target"`
	ServiceLevel  float64  `json:"service_level"`
}

// Summarize expects inbound calls. Missed counts queued calls that were not
// answered. Service level is answered-within-target over all calls, so a
// missed call is a service level failure.
func Summarize(calls []types.CallRecord, slTarget float64) Metrics {
	return summarize(calls, slTarget, func(r types.CallRecord) bool { return r.Missed() })
}

func summarize(calls []types.CallRecord, slTarget float64, missed func(types.CallRecord) bool) Metrics {
	m := Metrics{Total: len(calls)}
	var waits, lengths []float64
	for _, c := range calls {
		if missed(c) {
			m.Missed++
		}
		if !c.Answered() {
			continue
		}
		m.Answered++
		waits = append(waits, c.TimeToAnswer)
		if c.TimeToAnswer <= slTarget {
			m.WithinTarget++
		}
		if l := c.CallLength(); l > 0 {
			lengths = append(lengths, l)
		}
	}
	m.Unanswered = m.Total - m.Answered
	m.MissedPct = pct(m.Missed, m.Total)
	m.ServiceLevel = pct(m.WithinTarget, m.Total)
	m.AvgWait = mean(waits)
	m.MaxWait = maxOf(waits)
	m.AvgCallLength = mean(lengths)
	return m
}

// WeeklyAverage scales a count to a per-week figure, rounding half away
// from zero. weeks below 1 count as 1.
func WeeklyAverage(n, weeks int) int {
	if weeks <= 1 {
		return n
	}
	return int(math.Round(float64(n) / float64(weeks)))
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) * 100 / float64(d)
}

func mean(v []float64) *float64 {
	if len(v) == 0 {
		return nil
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	avg := sum / float64(len(v))
	return &avg
}

func maxOf(v []float64) *float64 {
	if len(v) == 0 {
		return nil
	}
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return &m
}

func inbound(calls []types.CallRecord) []types.CallRecord {
	out := make([]types.CallRecord, 0, len(calls))
	for _, c := range calls {
		if c.IsInbound() {
			out = append(out, c)
		}
	}
	return out
}
