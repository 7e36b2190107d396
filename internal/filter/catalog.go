// Package filter narrows the loaded call records to the working set for one
// dashboard view.
package filter

import "strings"

const (
	LocationAll = "all"
	QueueAll    = "all"
	QueueNone   = "noqueue"
)

// Catalog holds the practice-specific lookup tables the filters use.
type Catalog struct {
	// Locations maps a selector key to lowercase substrings of OfficeName.
	Locations map[string][]string
	// Queues maps a selector key to the queue display name.
	Queues map[string]string
	// QueueOrder lists queue keys in display order.
	QueueOrder []string
	Sites      []string
	// InternalExtensions are user names whose calls are front desk or nurse
	// station traffic rather than patient calls.
	InternalExtensions []string
}

var defaultInternalExtensions = []string{
	"Nurse 1", "Crace", "Lyneham - Rec 1", "Crace - Rec 1", "Crace - Rec 2",
	"Crace Office", "Nurse 5 (TR1)", "Nurse 2", "Nurse Consult", "Lyneham - Nurse",
	"Nurse 3 (TR2)", "Denman - Nurse", "Nurse 4 (TR2)", "Denman - Rec 1",
}

func DefaultCatalog() Catalog {
	return Catalog{
		Locations: map[string][]string{
			"crace":      {"crace"},
			"denman":     {"denman"},
			"lyneham":    {"lyneham"},
			"practice":   {"practice support"},
			"management": {"management / support", "management/support"},
		},
		Queues: map[string]string{
			"appointments": "Appointments",
			"vasectomy":    "Canberra Vasectomy",
			"general":      "General Enquiries",
			"health":       "Health Professionals",
		},
		QueueOrder:         []string{"appointments", "vasectomy", "general", "health"},
		Sites:              []string{"Crace", "Denman", "Lyneham"},
		InternalExtensions: append([]string(nil), defaultInternalExtensions...),
	}
}

// WithInternalExtensions replaces the internal extension list. An empty
// list keeps the current one.
func (c Catalog) WithInternalExtensions(names []string) Catalog {
	if len(names) > 0 {
		c.InternalExtensions = append([]string(nil), names...)
	}
	return c
}

// IsInternal matches userName case-insensitively against the whole name.
func (c Catalog) IsInternal(userName string) bool {
	for _, ext := range c.InternalExtensions {
		if strings.EqualFold(userName, ext) {
			return true
		}
	}
	return false
}

// MatchLocation reports whether office belongs to the location key. "all"
// and unknown keys match everything.
func (c Catalog) MatchLocation(office, key string) bool {
	patterns, ok := c.Locations[key]
	if key == LocationAll || !ok {
		return true
	}
	lower := strings.ToLower(office)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// KnownLocation reports whether key is "all" or a configured location.
func (c Catalog) KnownLocation(key string) bool {
	_, ok := c.Locations[key]
	return ok || key == LocationAll
}

// KnownQueue reports whether key is "all", "noqueue" or a configured queue.
func (c Catalog) KnownQueue(key string) bool {
	_, ok := c.Queues[key]
	return ok || key == QueueAll || key == QueueNone
}

// SiteMatches reports whether office belongs to the named site.
func SiteMatches(office, site string) bool {
	return strings.Contains(strings.ToLower(office), strings.ToLower(site))
}
