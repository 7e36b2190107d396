package aggregator

import (
	"sort"
	"strings"

	"phone-dashboard-go/internal/types"
)

type StaffRow struct {
	Name             string   `json:"name"`
	CallsIn          int      `json:"calls_in"`
	CallsOut         int      `json:"calls_out"`
	TotalCalls       int      `json:"total_calls"`
	AvgPickup        *float64 `json:"avg_pickup_sec"`
	AvgCallLengthIn  *float64 `json:"avg_call_length_in_sec"`
	AvgCallLengthOut *float64 `json:"avg_call_length_out_sec"`
}

type staffAcc struct {
	row                    StaffRow
	pickups, lenIn, lenOut []float64
}

// StaffTable groups calls by UserName, busiest first. Ties keep the order
// in which staff first appear.
func StaffTable(calls []types.CallRecord) []StaffRow {
	by := map[string]*staffAcc{}
	var order []string
	for _, c := range calls {
		name := strings.TrimSpace(c.UserName)
		if name == "" || name == "0" {
			continue
		}
		acc, ok := by[name]
		if !ok {
			acc = &staffAcc{row: StaffRow{Name: name}}
			by[name] = acc
			order = append(order, name)
		}
		switch {
		case c.IsInbound():
			acc.row.CallsIn++
			if c.Answered() {
				acc.pickups = append(acc.pickups, c.TimeToAnswer)
				if l := c.CallLength(); l > 0 {
					acc.lenIn = append(acc.lenIn, l)
				}
			}
		case c.IsOutbound():
			acc.row.CallsOut++
			if c.Duration > 0 {
				acc.lenOut = append(acc.lenOut, c.Duration)
			}
		}
	}

	rows := make([]StaffRow, 0, len(order))
	for _, name := range order {
		acc := by[name]
		r := acc.row
		r.TotalCalls = r.CallsIn + r.CallsOut
		r.AvgPickup = mean(acc.pickups)
		r.AvgCallLengthIn = mean(acc.lenIn)
		r.AvgCallLengthOut = mean(acc.lenOut)
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalCalls > rows[j].TotalCalls })
	return rows
}
