package types

import (
	"strings"
	"time"
)

type Direction string

const (
	DirectionIn       Direction = "In"
	DirectionOut      Direction = "Out"
	DirectionInternal Direction = "Int"
)

// ParseDirection maps the export's Direction column onto a Direction.
// Unrecognised values are kept verbatim so they count as neither In nor Out.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inbound":
		return DirectionIn
	case "out", "outbound":
		return DirectionOut
	case "int", "internal":
		return DirectionInternal
	}
	return Direction(strings.TrimSpace(s))
}

// CallRecord is one row of the main export joined with its queue membership.
// Start is the zero time when CallDateTime could not be parsed.
type CallRecord struct {
	CallID       string    `json:"call_id,omitempty"`
	Start        time.Time `json:"start"`
	Direction    Direction `json:"direction"`
	Duration     float64   `json:"duration_sec"`
	TimeToAnswer float64   `json:"time_to_answer_sec"`
	BillableTime float64   `json:"billable_sec"`
	OfficeName   string    `json:"office_name,omitempty"`
	UserName     string    `json:"user_name,omitempty"`
	OriginNumber string    `json:"origin_number,omitempty"`
	QueueName    string    `json:"queue_name,omitempty"`
}

func (r CallRecord) HasStart() bool   { return !r.Start.IsZero() }
func (r CallRecord) IsInbound() bool  { return r.Direction == DirectionIn }
func (r CallRecord) IsOutbound() bool { return r.Direction == DirectionOut }
func (r CallRecord) InQueue() bool    { return r.QueueName != "" }

// Answered reports whether the call was picked up.
func (r CallRecord) Answered() bool { return r.TimeToAnswer > 0 }

func (r CallRecord) Unanswered() bool { return !r.Answered() }

// Missed is a queued call that was never answered. Calls that never
// entered a queue are not missed under this definition.
func (r CallRecord) Missed() bool { return r.InQueue() && !r.Answered() }

// ValidCaller reports whether OriginNumber can identify a caller.
func (r CallRecord) ValidCaller() bool {
	n := strings.TrimSpace(r.OriginNumber)
	return n != "" && n != "0"
}

// CallLength is talk time: total duration minus the wait before pickup.
func (r CallRecord) CallLength() float64 { return r.Duration - r.TimeToAnswer }

// QueueLookup maps CallGUID to queue display name.
type QueueLookup map[string]string

// Week spans Monday 00:00:00 to Sunday 23:59:59.999999999 local time.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
