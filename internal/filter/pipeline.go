package filter

import (
	"phone-dashboard-go/internal/holiday"
	"phone-dashboard-go/internal/types"
)

// Stage is one named predicate of the pipeline.
type Stage struct {
	Name string
	Keep func(types.CallRecord) bool
}

// Pipeline applies a State to a loaded record set. Weeks must be the weeks
// detected on the full dataset.
type Pipeline struct {
	Catalog  Catalog
	Hours    OpeningHours
	Weeks    []types.Week
	Holidays holiday.Set
}

// Stages returns the active predicates for s in their fixed order:
// date range, week, direction, opening hours, internal extension,
// location, queue. Selections that filter nothing are left out.
func (p Pipeline) Stages(s State) []Stage {
	var stages []Stage
	if st, ok := p.dateRange(s); ok {
		stages = append(stages, st)
	}
	if st, ok := p.week(s); ok {
		stages = append(stages, st)
	}
	stages = append(stages, Stage{"direction", func(r types.CallRecord) bool {
		return r.Direction != types.DirectionInternal
	}})
	stages = append(stages, p.openingHours(s))
	stages = append(stages, Stage{"internal_extension", func(r types.CallRecord) bool {
		return !p.Catalog.IsInternal(r.UserName)
	}})
	if st, ok := p.location(s); ok {
		stages = append(stages, st)
	}
	if st, ok := p.queue(s); ok {
		stages = append(stages, st)
	}
	return stages
}

// Apply returns the records passing every stage, in input order.
func (p Pipeline) Apply(records []types.CallRecord, s State) []types.CallRecord {
	return keepAll(records, p.Stages(s))
}

// OutOfHours returns inbound calls that pass every selection except
// opening hours and fall outside them.
func (p Pipeline) OutOfHours(records []types.CallRecord, s State) []types.CallRecord {
	var stages []Stage
	for _, st := range p.Stages(s) {
		if st.Name != "opening_hours" {
			stages = append(stages, st)
		}
	}
	open := p.openingHours(s)
	stages = append(stages, Stage{"out_of_hours", func(r types.CallRecord) bool {
		return r.IsInbound() && r.HasStart() && !open.Keep(r)
	}})
	return keepAll(records, stages)
}

// ByLocation narrows records to the location key; "all" returns them as is.
func (c Catalog) ByLocation(records []types.CallRecord, key string) []types.CallRecord {
	if key == LocationAll || !c.KnownLocation(key) {
		return records
	}
	out := make([]types.CallRecord, 0, len(records))
	for _, r := range records {
		if c.MatchLocation(r.OfficeName, key) {
			out = append(out, r)
		}
	}
	return out
}

func keepAll(records []types.CallRecord, stages []Stage) []types.CallRecord {
	out := make([]types.CallRecord, 0, len(records))
next:
	for _, r := range records {
		for _, st := range stages {
			if !st.Keep(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

func (p Pipeline) dateRange(s State) (Stage, bool) {
	if !s.HasDateRange() {
		return Stage{}, false
	}
	from, to := s.From, s.To
	return Stage{"date_range", func(r types.CallRecord) bool {
		return r.HasStart() && !r.Start.Before(from) && !r.Start.After(to)
	}}, true
}

func (p Pipeline) week(s State) (Stage, bool) {
	if s.Week == AllWeeks {
		return Stage{}, false
	}
	if s.Week < 0 || s.Week >= len(p.Weeks) {
		return Stage{"week", func(types.CallRecord) bool { return false }}, true
	}
	w := p.Weeks[s.Week]
	return Stage{"week", func(r types.CallRecord) bool {
		return r.HasStart() && w.Contains(r.Start)
	}}, true
}

func (p Pipeline) openingHours(s State) Stage {
	return Stage{"opening_hours", func(r types.CallRecord) bool {
		return p.Hours.Within(r.Start, p.Holidays, s.ExcludeHolidays)
	}}
}

func (p Pipeline) location(s State) (Stage, bool) {
	if s.Location == LocationAll || !p.Catalog.KnownLocation(s.Location) {
		return Stage{}, false
	}
	key := s.Location
	return Stage{"location", func(r types.CallRecord) bool {
		return p.Catalog.MatchLocation(r.OfficeName, key)
	}}, true
}

func (p Pipeline) queue(s State) (Stage, bool) {
	switch s.Queue {
	case QueueAll:
		return Stage{}, false
	case QueueNone:
		return Stage{"queue", func(r types.CallRecord) bool {
			return r.IsInbound() && !r.InQueue()
		}}, true
	}
	name, ok := p.Catalog.Queues[s.Queue]
	if !ok {
		return Stage{}, false
	}
	return Stage{"queue", func(r types.CallRecord) bool {
		return r.QueueName == name
	}}, true
}
