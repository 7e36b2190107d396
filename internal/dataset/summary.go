package dataset

import (
	"sort"
	"time"
)

// Summary describes what a load produced.
type Summary struct {
	ID           string         `json:"id"`
	LoadedAt     time.Time      `json:"loaded_at"`
	Files        []string       `json:"files"`
	TotalCalls   int            `json:"total_calls"`
	DatedCalls   int            `json:"dated_calls"`
	UndatedCalls int            `json:"undated_calls"`
	QueuedCalls  int            `json:"queued_calls"`
	ByQueue      map[string]int `json:"by_queue"`
	ByDirection  map[string]int `json:"by_direction"`
	From         *time.Time     `json:"from,omitempty"`
	To           *time.Time     `json:"to,omitempty"`
	Weeks        []string       `json:"weeks"`
	Holidays     []string       `json:"holidays"`
}

func (d *Dataset) Describe() Summary {
	s := Summary{
		ID:          d.ID,
		LoadedAt:    d.LoadedAt,
		Files:       append([]string(nil), d.Files...),
		TotalCalls:  len(d.Records),
		ByQueue:     map[string]int{},
		ByDirection: map[string]int{},
		Weeks:       []string{},
		Holidays:    d.Holidays.Dates(),
	}
	for _, r := range d.Records {
		if r.HasStart() {
			s.DatedCalls++
		} else {
			s.UndatedCalls++
		}
		if r.InQueue() {
			s.QueuedCalls++
			s.ByQueue[r.QueueName]++
		}
		s.ByDirection[string(r.Direction)]++
	}
	if !d.MinDate.IsZero() {
		from, to := d.MinDate, d.MaxDate
		s.From, s.To = &from, &to
	}
	for _, w := range d.Weeks {
		s.Weeks = append(s.Weeks, w.Label)
	}
	sort.Strings(s.Files)
	return s
}
