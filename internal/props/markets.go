package props

import (
	"github.com/oddsline/settlement-api/internal/types"
)

// marketKeys is the set of proposition market types this resolver can
// settle, matching the Bundle's JSON field names.
var marketKeys = map[types.MarketType]bool{
	"goalTotals":        true,
	"halfTimeResults":   true,
	"bothTeamsToScore":  true,
	"doubleChance":      true,
	"correctScore":      true,
	"winningMargin":     true,
	"halfWithMostGoals": true,
	"oddEvenGoals":      true,
	"teamToScoreFirst":  true,
	"teamToScoreLast":   true,
	"cornerTotals":      true,
	"cardTotals":        true,
	"foulTotals":        true,
	"redCard":           true,
	"ownGoal":           true,
	"goalTimings":       true,
	"halftimeFulltime":  true,
	"shotsTotals":       true,
	"offsideTotals":     true,
	"goalTiming":        true,
}

// KnownMarket reports whether the market type names a resolvable
// proposition.
func KnownMarket(marketType types.MarketType) bool {
	return marketKeys[marketType]
}

// Result returns the bundle value for one proposition market type. The
// second return value is false for unrecognized types.
func (b *Bundle) Result(marketType types.MarketType) (any, bool) {
	switch marketType {
	case "goalTotals":
		return b.GoalTotals, true
	case "halfTimeResults":
		return b.HalfTimeResults, true
	case "bothTeamsToScore":
		return b.BothTeamsToScore, true
	case "doubleChance":
		return b.DoubleChance, true
	case "correctScore":
		return b.CorrectScore, true
	case "winningMargin":
		return b.WinningMargin, true
	case "halfWithMostGoals":
		return b.HalfWithMostGoals, true
	case "oddEvenGoals":
		return b.OddEvenGoals, true
	case "teamToScoreFirst":
		return b.TeamToScoreFirst, true
	case "teamToScoreLast":
		return b.TeamToScoreLast, true
	case "cornerTotals":
		return b.CornerTotals, true
	case "cardTotals":
		return b.CardTotals, true
	case "foulTotals":
		return b.FoulTotals, true
	case "redCard":
		return b.RedCard, true
	case "ownGoal":
		return b.OwnGoal, true
	case "goalTimings":
		return b.GoalTimings, true
	case "halftimeFulltime":
		return b.HalftimeFulltime, true
	case "shotsTotals":
		return b.ShotsTotals, true
	case "offsideTotals":
		return b.OffsideTotals, true
	case "goalTiming":
		return b.GoalTimingIntervals, true
	default:
		return nil, false
	}
}
