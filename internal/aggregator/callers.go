package aggregator

import (
	"math"
	"sort"
	"strings"
	"time"

	"phone-dashboard-go/internal/types"
)

type Callback struct {
	UniqueCallers       int     `json:"unique_callers"`
	CallersWithCallback int     `json:"callers_with_callback"`
	CallbackRate        float64 `json:"callback_rate"`
	FCRRate             float64 `json:"fcr_rate"`
}

// CallbackMetrics groups calls by caller number. A caller has called back
// when any two consecutive calls are at most windowHours apart. Callers
// whose calls have no parsable time still count as unique callers.
func CallbackMetrics(calls []types.CallRecord, windowHours float64) Callback {
	byCaller, order := groupByCaller(calls)
	res := Callback{UniqueCallers: len(order)}
	if res.UniqueCallers == 0 {
		return res
	}
	for _, num := range order {
		list := byCaller[num]
		if len(list) < 2 {
			continue
		}
		for i := 0; i < len(list)-1; i++ {
			if hoursBetween(list[i].Start, list[i+1].Start) <= windowHours {
				res.CallersWithCallback++
				break
			}
		}
	}
	res.CallbackRate = round1(pct(res.CallersWithCallback, res.UniqueCallers))
	res.FCRRate = 100 - res.CallbackRate
	return res
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type AttemptHistogram struct {
	One       int `json:"one"`
	Two       int `json:"two"`
	ThreePlus int `json:"three_plus"`
}

type FollowupReport struct {
	Lost          int              `json:"lost"`
	Persistent    int              `json:"persistent"`
	LostByHour    map[int]int      `json:"lost_by_hour"`
	TopLostHours  []HourCount      `json:"top_lost_hours"`
	Attempts      AttemptHistogram `json:"attempts"`
	AvgAttempts   *float64         `json:"avg_attempts"`
	AvgMissedWait *float64         `json:"avg_missed_wait_sec"`
}

// PeakLostHour is the hour with the most lost callers, if any.
func (f FollowupReport) PeakLostHour() (HourCount, bool) {
	if len(f.TopLostHours) == 0 {
		return HourCount{}, false
	}
	return f.TopLostHours[0], true
}

// Followup looks at each inbound caller's first unanswered call and the
// calls in the windowHours after it. A caller answered in that window is
// persistent, otherwise lost. Calls before the first miss are ignored.
func Followup(calls []types.CallRecord, windowHours float64) FollowupReport {
	rep := FollowupReport{LostByHour: map[int]int{}, TopLostHours: []HourCount{}}
	byCaller, order := groupByCaller(inbound(calls))

	var attempts []float64
	var missedWaits []float64
	for _, num := range order {
		list := byCaller[num]
		first := -1
		for i, c := range list {
			if !c.Answered() {
				first = i
				break
			}
		}
		if first < 0 {
			continue
		}
		missedAt := list[first].Start

		var window []types.CallRecord
		for _, c := range list {
			d := hoursBetween(missedAt, c.Start)
			if d >= 0 && d <= windowHours {
				window = append(window, c)
			}
		}
		answeredAt := -1
		for i, c := range window {
			if !c.Answered() {
				missedWaits = append(missedWaits, c.Duration)
			} else if answeredAt < 0 {
				answeredAt = i
			}
		}

		if answeredAt < 0 {
			rep.Lost++
			rep.LostByHour[missedAt.Hour()]++
			continue
		}
		rep.Persistent++
		n := answeredAt + 1
		attempts = append(attempts, float64(n))
		switch n {
		case 1:
			rep.Attempts.One++
		case 2:
			rep.Attempts.Two++
		default:
			rep.Attempts.ThreePlus++
		}
	}

	for h, c := range rep.LostByHour {
		rep.TopLostHours = append(rep.TopLostHours, HourCount{Hour: h, Count: c})
	}
	sort.Slice(rep.TopLostHours, func(i, j int) bool {
		a, b := rep.TopLostHours[i], rep.TopLostHours[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Hour < b.Hour
	})
	if len(rep.TopLostHours) > 5 {
		rep.TopLostHours = rep.TopLostHours[:5]
	}
	rep.AvgAttempts = mean(attempts)
	rep.AvgMissedWait = mean(missedWaits)
	return rep
}

// groupByCaller keys calls with a valid origin number, keeping first-seen
// caller order. Each caller's dated calls are sorted by start time.
func groupByCaller(calls []types.CallRecord) (map[string][]types.CallRecord, []string) {
	by := map[string][]types.CallRecord{}
	var order []string
	for _, c := range calls {
		if !c.ValidCaller() {
			continue
		}
		num := strings.TrimSpace(c.OriginNumber)
		list, seen := by[num]
		if !seen {
			order = append(order, num)
		}
		if c.HasStart() {
			list = append(list, c)
		}
		by[num] = list
	}
	for _, list := range by {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
	}
	return by, order
}

func hoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
