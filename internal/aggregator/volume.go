package aggregator

import (
	"strconv"

	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/types"
)

type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// HourlyVolume counts inbound and outbound calls for each hour 7AM-6PM.
func HourlyVolume(calls []types.CallRecord) []HourBucket {
	const first, last = 7, 18
	out := make([]HourBucket, 0, last-first+1)
	for h := first; h <= last; h++ {
		out = append(out, HourBucket{Hour: h, Label: hourLabel(h)})
	}
	for _, c := range calls {
		if !c.HasStart() {
			continue
		}
		h := c.Start.Hour()
		if h < first || h > last {
			continue
		}
		switch {
		case c.IsInbound():
			out[h-first].In++
		case c.IsOutbound():
			out[h-first].Out++
		}
	}
	return out
}

func hourLabel(h int) string {
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h
	switch {
	case h > 12:
		h12 = h - 12
	case h == 0:
		h12 = 12
	}
	return strconv.Itoa(h12) + suffix
}

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

type QueueRow struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Missed   int     `json:"missed"`
	MissRate float64 `json:"miss_rate"`
	Severity string  `json:"severity,omitempty"`
}

type QueueReport struct {
	Queues []QueueRow `json:"queues"`
	Total  QueueRow   `json:"total"`
}

// MissedByQueue splits inbound calls by queue plus a "No Queue" row. Here a
// miss is any unanswered call.
func MissedByQueue(calls []types.CallRecord, catalog filter.Catalog) QueueReport {
	in := inbound(calls)
	rep := QueueReport{Total: QueueRow{Key: "total", Name: "TOTAL"}}
	add := func(key, name string, match func(types.CallRecord) bool) {
		row := QueueRow{Key: key, Name: name}
		for _, c := range in {
			if !match(c) {
				continue
			}
			row.Total++
			if !c.Answered() {
				row.Missed++
			}
		}
		row.Answered = row.Total - row.Missed
		row.MissRate = pct(row.Missed, row.Total)
		row.Severity = severity(row.MissRate)
		rep.Queues = append(rep.Queues, row)
		rep.Total.Total += row.Total
		rep.Total.Answered += row.Answered
		rep.Total.Missed += row.Missed
	}
	for _, key := range catalog.QueueOrder {
		name := catalog.Queues[key]
		add(key, name, func(c types.CallRecord) bool { return c.QueueName == name })
	}
	add(filter.QueueNone, "No Queue", func(c types.CallRecord) bool { return !c.InQueue() })
	rep.Total.MissRate = pct(rep.Total.Missed, rep.Total.Total)
	return rep
}

func severity(missRate float64) string {
	switch {
	case missRate > 10:
		return SeverityCritical
	case missRate > 5:
		return SeverityWarning
	}
	return ""
}
