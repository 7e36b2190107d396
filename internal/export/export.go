// Package export writes the filtered call set and its summary as CSV or
// XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"phone-dashboard-go/internal/processor"
	"phone-dashboard-go/internal/types"
)

var CallColumns = []string{
	"Date", "Time", "Direction", "Queue", "Office", "Staff",
	"Duration (sec)", "Wait Time (sec)", "Answered",
}

// Report is everything an export file contains.
type Report struct {
	Title     string
	Generated time.Time
	Period    string
	Location  string
	Queue     string
	Summary   [][2]string
	Calls     []types.CallRecord
}

// FromDashboard builds the export for an already computed dashboard.
func FromDashboard(d processor.Dashboard, now time.Time) Report {
	r := Report{
		Title:     "Phone Dashboard Export",
		Generated: now,
		Period:    "All data",
		Location:  d.State.Location,
		Queue:     d.State.Queue,
		Calls:     d.Calls,
	}
	if d.State.HasDateRange() {
		r.Period = d.State.From.Format("02/01/2006") + " - " + d.State.To.Format("02/01/2006")
	}
	if d.Period.Week != "" {
		r.Period += " (" + d.Period.Week + ")"
	}
	s := d.Summary
	r.Summary = [][2]string{
		{"Total Calls", strconv.Itoa(s.Total)},
		{"Answered", strconv.Itoa(s.Answered)},
		{"Missed", strconv.Itoa(s.Missed)},
		{"Missed %", fmt.Sprintf("%.1f%%", s.MissedPct)},
		{"Service Level", fmt.Sprintf("%.1f%%", s.ServiceLevel)},
		{"Avg Wait (sec)", optional(s.AvgWait)},
		{"Max Wait (sec)", optional(s.MaxWait)},
		{"Avg Call Length (sec)", optional(s.AvgCallLength)},
		{"FCR Rate", fmt.Sprintf("%.1f%%", s.Callback.FCRRate)},
		{"Callback Rate", fmt.Sprintf("%.1f%%", s.Callback.CallbackRate)},
		{"Out of Hours Calls", strconv.Itoa(s.OutOfHours)},
	}
	return r
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

// CallRow renders one call in CallColumns order.
func CallRow(c types.CallRecord) []string {
	date, clock := "", ""
	if c.HasStart() {
		date = c.Start.Format("02/01/2006")
		clock = c.Start.Format("15:04:05")
	}
	queue := c.QueueName
	if queue == "" {
		queue = "-"
	}
	answered := "No"
	if c.Answered() {
		answered = "Yes"
	}
	return []string{
		date, clock, string(c.Direction), queue, c.OfficeName, c.UserName,
		seconds(c.Duration), seconds(c.TimeToAnswer), answered,
	}
}

func seconds(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteCSV writes a UTF-8 BOM, the metadata rows, the summary block and
// then one row per call.
func WriteCSV(w io.Writer, r Report) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	rows := [][]string{
		{r.Title},
		{"Generated", r.Generated.Format("02/01/2006 15:04:05")},
		{"Period", r.Period},
		{"Location", r.Location},
		{"Queue", r.Queue},
		{},
		{"Summary"},
	}
	for _, kv := range r.Summary {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	rows = append(rows, []string{}, CallColumns)
	for _, c := range r.Calls {
		rows = append(rows, CallRow(c))
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Summary sheet and a Calls sheet.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary, calls = "Summary", "Calls"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(calls); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	meta := [][]interface{}{
		{r.Title},
		{"Generated", r.Generated.Format("02/01/2006 15:04:05")},
		{"Period", r.Period},
		{"Location", r.Location},
		{"Queue", r.Queue},
		{},
	}
	for _, kv := range r.Summary {
		meta = append(meta, []interface{}{kv[0], kv[1]})
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	f.SetCellStyle(summary, "A1", "A1", bold)
	f.SetColWidth(summary, "A", "A", 24)
	f.SetColWidth(summary, "B", "B", 28)

	for i, col := range CallColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(calls, cell, col)
		f.SetCellStyle(calls, cell, cell, bold)
	}
	for i, c := range r.Calls {
		row := CallRow(c)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[6], values[7] = c.Duration, c.TimeToAnswer
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(calls, cell, &values); err != nil {
			return fmt.Errorf("write calls: %w", err)
		}
	}
	for i := range CallColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(calls, col, col, 15)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
