package props

import (
	"sort"
	"strings"

	"github.com/oddsline/settlement-api/internal/types"
)

// organizeTimeline returns the entries sorted ascending by minute along
// with the half-time goal tally per team. Goals at minute 45 count as
// first-half goals. The sort is required before any first/last-scorer or
// interval reasoning; input order carries no meaning.
func organizeTimeline(entries []types.TimelineEntry) (sorted []types.TimelineEntry, homeHalf, awayHalf int) {
	sorted = make([]types.TimelineEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minute < sorted[j].Minute
	})

	for _, e := range sorted {
		if e.Type != types.TimelineGoal || e.Minute > 45 {
			continue
		}
		if e.Team == "home" {
			homeHalf++
		} else if e.Team == "away" {
			awayHalf++
		}
	}

	return sorted, homeHalf, awayHalf
}

// isYellowCard matches either the normalized type or a mention in the
// free-text detail, mirroring the provider's inconsistent card shapes.
func isYellowCard(e types.TimelineEntry) bool {
	return e.Type == types.TimelineYellowCard ||
		strings.Contains(strings.ToLower(e.Detail), "yellow card")
}

func isRedCard(e types.TimelineEntry) bool {
	return e.Type == types.TimelineRedCard ||
		strings.Contains(strings.ToLower(e.Detail), "red card")
}
