package aggregator

import "phone-dashboard-go/internal/types"

// Abandonment bucket upper edges in seconds; the last bucket is open.
var abandonmentEdges = []float64{35, 60, 120, 300}

var abandonmentLabels = []string{"<35s", "35-60s", "1-2min", "2-5min", ">5min"}

type Bucket struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

type AbandonmentReport struct {
	Total   int      `json:"total"`
	AvgWait *float64 `json:"avg_wait_sec"`
	Buckets []Bucket `json:"buckets"`
}

// Abandonment buckets the unanswered inbound calls by how long the caller
// waited before hanging up, which for those calls is CallDuration.
func Abandonment(calls []types.CallRecord) AbandonmentReport {
	rep := AbandonmentReport{Buckets: make([]Bucket, len(abandonmentLabels))}
	for i, l := range abandonmentLabels {
		rep.Buckets[i].Label = l
	}
	var waits []float64
	for _, c := range calls {
		if !c.IsInbound() || c.Answered() {
			continue
		}
		rep.Total++
		waits = append(waits, c.Duration)
		if i := bucketIndex(c.Duration); i >= 0 {
			rep.Buckets[i].Count++
		}
	}
	for i := range rep.Buckets {
		rep.Buckets[i].Pct = pct(rep.Buckets[i].Count, rep.Total)
	}
	rep.AvgWait = mean(waits)
	return rep
}

func bucketIndex(wait float64) int {
	if wait < 0 {
		return -1
	}
	for i, edge := range abandonmentEdges {
		if wait < edge {
			return i
		}
	}
	return len(abandonmentEdges)
}
