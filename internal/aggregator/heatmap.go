package aggregator

import (
	"math"
	"time"

	"phone-dashboard-go/internal/timenorm"
	"phone-dashboard-go/internal/types"
)

// Heatmaps cover 07:30 to 17:59, Monday to Saturday.
const (
	FirstSlot = 15
	LastSlot  = 35
)

var heatmapDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

type Cell struct {
	Value  *float64 `json:"value"`
	Level  int      `json:"level"`
	Count  int      `json:"count"`
	Missed int      `json:"missed,omitempty"`
}

// Heatmap rows are slots, columns are days.
type Heatmap struct {
	Kind  string   `json:"kind"`
	Slots []string `json:"slots"`
	Days  []string `json:"days"`
	Cells [][]Cell `json:"cells"`
}

func newHeatmap(kind string) Heatmap {
	h := Heatmap{Kind: kind}
	for s := FirstSlot; s <= LastSlot; s++ {
		h.Slots = append(h.Slots, timenorm.SlotLabel(s))
		h.Cells = append(h.Cells, make([]Cell, len(heatmapDays)))
	}
	for _, d := range heatmapDays {
		h.Days = append(h.Days, d.String()[:3])
	}
	return h
}

// cellIndex locates c in the grid; ok is false outside the covered hours
// and days or when c has no start time.
func cellIndex(c types.CallRecord) (row, col int, ok bool) {
	slot, ok := timenorm.Slot(c.Start)
	if !ok || slot < FirstSlot || slot > LastSlot {
		return 0, 0, false
	}
	day := c.Start.Weekday()
	if day == time.Sunday {
		return 0, 0, false
	}
	return slot - FirstSlot, int(day) - 1, true
}

// VolumeHeatmap counts calls per cell, with levels 1-7 relative to the
// busiest cell.
func VolumeHeatmap(kind string, calls []types.CallRecord) Heatmap {
	h := newHeatmap(kind)
	for _, c := range calls {
		if r, d, ok := cellIndex(c); ok {
			h.Cells[r][d].Count++
		}
	}
	max := 0.0
	h.each(func(cell *Cell) {
		v := float64(cell.Count)
		cell.Value = &v
		max = math.Max(max, v)
	})
	h.each(func(cell *Cell) { cell.Level = relativeLevel(*cell.Value, max) })
	return h
}

const (
	WaitMax = "max"
	WaitAvg = "avg"
)

// WaitHeatmap shows the max or mean time to answer of answered calls.
// Cells without answered calls have no value and level 0.
func WaitHeatmap(calls []types.CallRecord, mode string) Heatmap {
	h := newHeatmap("wait_" + mode)
	waits := make([][][]float64, len(h.Cells))
	for i := range waits {
		waits[i] = make([][]float64, len(heatmapDays))
	}
	for _, c := range calls {
		if !c.Answered() {
			continue
		}
		if r, d, ok := cellIndex(c); ok {
			waits[r][d] = append(waits[r][d], c.TimeToAnswer)
			h.Cells[r][d].Count++
		}
	}
	for r := range h.Cells {
		for d := range h.Cells[r] {
			cell := &h.Cells[r][d]
			if mode == WaitMax {
				cell.Value = maxOf(waits[r][d])
			} else {
				cell.Value = mean(waits[r][d])
			}
			cell.Level = waitLevel(cell.Value)
		}
	}
	return h
}

const (
	MissedCount = "count"
	MissedRate  = "rate"
)

// MissedHeatmap treats every unanswered inbound call as missed, queued or
// not. In rate mode a cell without calls has no value.
func MissedHeatmap(calls []types.CallRecord, mode string) Heatmap {
	h := newHeatmap("missed_" + mode)
	for _, c := range calls {
		if !c.IsInbound() {
			continue
		}
		if r, d, ok := cellIndex(c); ok {
			h.Cells[r][d].Count++
			if !c.Answered() {
				h.Cells[r][d].Missed++
			}
		}
	}
	max := 0.0
	h.each(func(cell *Cell) {
		var v float64
		if mode == MissedRate {
			if cell.Count == 0 {
				return
			}
			v = pct(cell.Missed, cell.Count)
		} else {
			v = float64(cell.Missed)
		}
		cell.Value = &v
		max = math.Max(max, v)
	})
	h.each(func(cell *Cell) {
		switch {
		case cell.Value == nil || *cell.Value == 0:
			cell.Level = 0
		case mode == MissedRate:
			cell.Level = rateLevel(*cell.Value)
		default:
			cell.Level = relativeLevel(*cell.Value, max)
		}
	})
	return h
}

func (h Heatmap) each(fn func(*Cell)) {
	for r := range h.Cells {
		for d := range h.Cells[r] {
			fn(&h.Cells[r][d])
		}
	}
}

// Sum adds up the cell counts.
func (h Heatmap) Sum() int {
	n := 0
	h.each(func(c *Cell) { n += c.Count })
	return n
}

func relativeLevel(v, max float64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	return int(math.Min(7, math.Ceil(v/max*7)))
}

var waitThresholds = []float64{30, 60, 90, 120, 180, 300}

func waitLevel(v *float64) int {
	if v == nil {
		return 0
	}
	return thresholdLevel(*v, waitThresholds)
}

var rateThresholds = []float64{10, 20, 30, 40, 50, 70}

func rateLevel(v float64) int { return thresholdLevel(v, rateThresholds) }

func thresholdLevel(v float64, thresholds []float64) int {
	for i, t := range thresholds {
		if v < t {
			return i + 1
		}
	}
	return len(thresholds) + 1
}
