package actionable

import (
	"fmt"

	"phone-dashboard-go/internal/aggregator"
)

type ActionCard struct {
	Severity string `json:"severity"`
	Insight  string `json:"insight"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// Input is the slice of a dashboard the highlights are drawn from.
type Input struct {
	Summary  aggregator.Metrics
	Followup aggregator.FollowupReport
	Queues   aggregator.QueueReport
	Callback aggregator.Callback
}

// missed% above this is flagged on the summary
const missedWarnPct = 5

// FormatHourRange renders an hour as a one-hour range: 9-10am, 12-1pm, 2-3pm.
func FormatHourRange(h int) string {
	switch {
	case h > 12:
		return fmt.Sprintf("%d-%dpm", h-12, h-11)
	case h == 12:
		return "12-1pm"
	}
	return fmt.Sprintf("%d-%dam", h, h+1)
}

func Generate(in Input) []ActionCard {
	var cards []ActionCard

	if peak, ok := in.Followup.PeakLostHour(); ok {
		cards = append(cards, ActionCard{
			Severity: aggregator.SeverityWarning,
			Insight:  fmt.Sprintf("Peak: %s (%d)", FormatHourRange(peak.Hour), peak.Count),
			Action:   fmt.Sprintf("Add phone cover between %s; %d callers never got through", FormatHourRange(peak.Hour), in.Followup.Lost),
			Impact:   "Recover lost appointment bookings",
		})
	}

	if in.Summary.Total > 0 && in.Summary.MissedPct > missedWarnPct {
		cards = append(cards, ActionCard{
			Severity: aggregator.SeverityWarning,
			Insight:  fmt.Sprintf("%.1f%% of queued calls missed", in.Summary.MissedPct),
			Action:   "Review queue overflow and ring groups",
			Impact:   "Lower missed-call rate",
		})
	}

	for _, q := range in.Queues.Queues {
		if q.Severity == "" {
			continue
		}
		cards = append(cards, ActionCard{
			Severity: q.Severity,
			Insight:  fmt.Sprintf("%s miss rate %.1f%% (%d of %d)", q.Name, q.MissRate, q.Missed, q.Total),
			Action:   fmt.Sprintf("Check staffing on the %s queue", q.Name),
			Impact:   "Fewer abandoned calls on this queue",
		})
	}

	if in.Callback.UniqueCallers > 0 && in.Callback.CallbackRate > 0 {
		cards = append(cards, ActionCard{
			Severity: "info",
			Insight:  fmt.Sprintf("%.1f%% of callers called back within the window", in.Callback.CallbackRate),
			Action:   "Resolve more enquiries on the first call",
			Impact:   fmt.Sprintf("First call resolution at %.1f%%", in.Callback.FCRRate),
		})
	}

	if len(cards) == 0 {
		cards = append(cards, ActionCard{
			Severity: "info",
			Insight:  "No strong missed-call pattern detected",
			Action:   "Monitor and collect more data",
			Impact:   "Low immediate intervention",
		})
	}
	return cards
}
