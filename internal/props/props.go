// Package props resolves soccer proposition markets from box-score
// statistics and the chronological match timeline. Resolution is pure:
// no I/O, no retained state, never a panic on malformed provider data.
package props

import (
	"fmt"
	"strings"

	"github.com/oddsline/settlement-api/internal/types"
)

// TeamSplit is a per-team breakdown of a counted statistic.
type TeamSplit struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// GoalTotals covers exact-goals and per-team goal total markets.
type GoalTotals struct {
	ExactGoals int       `json:"exactGoals"`
	TeamTotals TeamSplit `json:"teamTotals"`
}

// HalfTimeResults reports which side led at the break.
type HalfTimeResults struct {
	HomeWin bool `json:"homeWin"`
	AwayWin bool `json:"awayWin"`
}

type CornerTotals struct {
	OverUnder    float64   `json:"overUnder"`
	ExactCorners int       `json:"exactCorners"`
	TeamTotals   TeamSplit `json:"teamTotals"`
}

type CardTotals struct {
	OverUnder  float64   `json:"overUnder"`
	ExactCards int       `json:"exactCards"`
	TeamTotals TeamSplit `json:"teamTotals"`
}

type FoulTotals struct {
	OverUnder  float64   `json:"overUnder"`
	TeamTotals TeamSplit `json:"teamTotals"`
}

type ShotsTotals struct {
	OverUnder     float64   `json:"overUnder"`
	ShotsOnTarget float64   `json:"shotsOnTarget"`
	TeamTotals    TeamSplit `json:"teamTotals"`
}

type OffsideTotals struct {
	OverUnder  float64   `json:"overUnder"`
	TeamTotals TeamSplit `json:"teamTotals"`
}

// GoalTimings flags early and late goals.
type GoalTimings struct {
	GoalIn1st10Minutes  bool `json:"goalIn1st10Minutes"`
	GoalInLast10Minutes bool `json:"goalInLast10Minutes"`
}

// Bundle is the fixed set of proposition-market results derived for one
// completed match. JSON field names are the market keys callers dispatch
// on.
type Bundle struct {
	GoalTotals          GoalTotals      `json:"goalTotals"`
	HalfTimeResults     HalfTimeResults `json:"halfTimeResults"`
	BothTeamsToScore    bool            `json:"bothTeamsToScore"`
	DoubleChance        []string        `json:"doubleChance"`
	CorrectScore        string          `json:"correctScore"`
	WinningMargin       int             `json:"winningMargin"`
	HalfWithMostGoals   string          `json:"halfWithMostGoals"`
	OddEvenGoals        string          `json:"oddEvenGoals"`
	TeamToScoreFirst    string          `json:"teamToScoreFirst"`
	TeamToScoreLast     string          `json:"teamToScoreLast"`
	CornerTotals        CornerTotals    `json:"cornerTotals"`
	CardTotals          CardTotals      `json:"cardTotals"`
	FoulTotals          FoulTotals      `json:"foulTotals"`
	RedCard             bool            `json:"redCard"`
	OwnGoal             bool            `json:"ownGoal"`
	GoalTimings         GoalTimings     `json:"goalTimings"`
	HalftimeFulltime    string          `json:"halftimeFulltime"`
	ShotsTotals         ShotsTotals     `json:"shotsTotals"`
	OffsideTotals       OffsideTotals   `json:"offsideTotals"`
	GoalTimingIntervals []string        `json:"goalTiming"`
}

// Resolve derives the full proposition bundle from one match's data.
func Resolve(data types.MatchData) Bundle {
	stats := BuildStats(data.Stats)
	timeline, homeHalf, awayHalf := organizeTimeline(data.Timeline)
	home := data.Score.Home
	away := data.Score.Away

	return Bundle{
		GoalTotals: GoalTotals{
			ExactGoals: home + away,
			TeamTotals: TeamSplit{Home: float64(home), Away: float64(away)},
		},
		HalfTimeResults: HalfTimeResults{
			HomeWin: homeHalf > awayHalf,
			AwayWin: awayHalf > homeHalf,
		},
		BothTeamsToScore:    home > 0 && away > 0,
		DoubleChance:        resolveDoubleChance(home, away),
		CorrectScore:        fmt.Sprintf("%d-%d", home, away),
		WinningMargin:       abs(home - away),
		HalfWithMostGoals:   resolveHalfWithMostGoals(home, away, homeHalf, awayHalf),
		OddEvenGoals:        resolveOddEven(home, away),
		TeamToScoreFirst:    teamToScoreFirst(timeline),
		TeamToScoreLast:     teamToScoreLast(timeline),
		CornerTotals:        resolveCornerTotals(stats),
		CardTotals:          resolveCardTotals(stats, timeline),
		FoulTotals:          resolveFoulTotals(stats),
		RedCard:             hasRedCard(timeline),
		OwnGoal:             hasOwnGoal(timeline),
		GoalTimings:         resolveGoalTimings(timeline),
		HalftimeFulltime:    resolveHalftimeFulltime(homeHalf, awayHalf, home, away),
		ShotsTotals:         resolveShotsTotals(stats),
		OffsideTotals:       resolveOffsideTotals(stats),
		GoalTimingIntervals: resolveGoalTimingIntervals(timeline),
	}
}

// resolveDoubleChance returns every double-chance selection consistent
// with the final score. A draw satisfies both homeOrDraw and drawOrAway.
func resolveDoubleChance(home, away int) []string {
	var results []string
	if home >= away {
		results = append(results, "homeOrDraw")
	}
	if away >= home {
		results = append(results, "drawOrAway")
	}
	if home != away {
		results = append(results, "homeOrAway")
	}
	return results
}

func resolveHalfWithMostGoals(home, away, homeHalf, awayHalf int) string {
	firstHalf := homeHalf + awayHalf
	secondHalf := (home + away) - firstHalf

	switch {
	case firstHalf > secondHalf:
		return "firstHalf"
	case secondHalf > firstHalf:
		return "secondHalf"
	default:
		return "equal"
	}
}

func resolveOddEven(home, away int) string {
	if (home+away)%2 == 1 {
		return "odd"
	}
	return "even"
}

// teamToScoreFirst scans the minute-sorted timeline for the first goal.
func teamToScoreFirst(timeline []types.TimelineEntry) string {
	for _, e := range timeline {
		if e.Type == types.TimelineGoal {
			return e.Team
		}
	}
	return "noGoal"
}

func teamToScoreLast(timeline []types.TimelineEntry) string {
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].Type == types.TimelineGoal {
			return timeline[i].Team
		}
	}
	return "noGoal"
}

func resolveCornerTotals(stats TeamStats) CornerTotals {
	home, away := stats.lookup("corner_kicks", "Corner Kicks")
	total := home + away
	return CornerTotals{
		OverUnder:    float64(total),
		ExactCorners: total,
		TeamTotals:   TeamSplit{Home: float64(home), Away: float64(away)},
	}
}

// resolveCardTotals applies the longest fallback chain: normalized keys,
// then the provider's literal labels, then counting card entries in the
// timeline when the statistics carry nothing at all.
func resolveCardTotals(stats TeamStats, timeline []types.TimelineEntry) CardTotals {
	homeYellow := stats.Home["yellow_cards"]
	awayYellow := stats.Away["yellow_cards"]
	homeRed := stats.Home["red_cards"]
	awayRed := stats.Away["red_cards"]

	if homeYellow == 0 && awayYellow == 0 {
		homeYellow = stats.Home["Yellow Cards"]
		awayYellow = stats.Away["Yellow Cards"]
	}
	if homeRed == 0 && awayRed == 0 {
		homeRed = stats.Home["Red Cards"]
		awayRed = stats.Away["Red Cards"]
	}

	if homeYellow == 0 && awayYellow == 0 && homeRed == 0 && awayRed == 0 {
		for _, e := range timeline {
			switch {
			case isYellowCard(e) && e.Team == "home":
				homeYellow++
			case isYellowCard(e) && e.Team == "away":
				awayYellow++
			case isRedCard(e) && e.Team == "home":
				homeRed++
			case isRedCard(e) && e.Team == "away":
				awayRed++
			}
		}
	}

	homeCards := homeYellow + homeRed
	awayCards := awayYellow + awayRed
	total := homeCards + awayCards

	return CardTotals{
		OverUnder:  float64(total),
		ExactCards: total,
		TeamTotals: TeamSplit{Home: float64(homeCards), Away: float64(awayCards)},
	}
}

func resolveFoulTotals(stats TeamStats) FoulTotals {
	home, away := stats.lookup("fouls", "Fouls")
	return FoulTotals{
		OverUnder:  float64(home + away),
		TeamTotals: TeamSplit{Home: float64(home), Away: float64(away)},
	}
}

func hasRedCard(timeline []types.TimelineEntry) bool {
	for _, e := range timeline {
		if isRedCard(e) {
			return true
		}
	}
	return false
}

// hasOwnGoal matches an "own goal" mention in any entry's detail text,
// regardless of which team the entry is attributed to.
func hasOwnGoal(timeline []types.TimelineEntry) bool {
	for _, e := range timeline {
		if strings.Contains(strings.ToLower(e.Detail), "own goal") {
			return true
		}
	}
	return false
}

func resolveGoalTimings(timeline []types.TimelineEntry) GoalTimings {
	var timings GoalTimings
	for _, e := range timeline {
		if e.Type != types.TimelineGoal {
			continue
		}
		if e.Minute <= 10 {
			timings.GoalIn1st10Minutes = true
		}
		if e.Minute >= 80 {
			timings.GoalInLast10Minutes = true
		}
	}
	return timings
}

// resolveHalftimeFulltime concatenates the half-time and full-time
// results, capitalizing only the full-time half of the label
// ("homeAway", "drawDraw").
func resolveHalftimeFulltime(homeHalf, awayHalf, homeFinal, awayFinal int) string {
	return winner(homeHalf, awayHalf) + capitalize(winner(homeFinal, awayFinal))
}

func winner(home, away int) string {
	switch {
	case home > away:
		return "home"
	case away > home:
		return "away"
	default:
		return "draw"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func resolveShotsTotals(stats TeamStats) ShotsTotals {
	home, away := stats.lookup("total_shots", "Total Shots")
	homeOnTarget, awayOnTarget := stats.lookup("shots_on_goal", "Shots on Goal")

	return ShotsTotals{
		OverUnder:     float64(home + away),
		ShotsOnTarget: float64(homeOnTarget + awayOnTarget),
		TeamTotals:    TeamSplit{Home: float64(home), Away: float64(away)},
	}
}

func resolveOffsideTotals(stats TeamStats) OffsideTotals {
	home, away := stats.lookup("offsides", "Offsides")
	return OffsideTotals{
		OverUnder:  float64(home + away),
		TeamTotals: TeamSplit{Home: float64(home), Away: float64(away)},
	}
}

// resolveGoalTimingIntervals buckets each scoring minute into a fixed
// range and returns the de-duplicated set of buckets hit, in first-goal
// order. Minute 45 lands in "31-45": the provider reports injury-time
// goals past the half as 45 with no separate marker, so a distinct "45+"
// bucket is unreachable and is not emitted.
func resolveGoalTimingIntervals(timeline []types.TimelineEntry) []string {
	seen := make(map[string]bool)
	var intervals []string

	for _, e := range timeline {
		if e.Type != types.TimelineGoal {
			continue
		}

		var bucket string
		m := e.Minute
		switch {
		case m <= 15:
			bucket = "0-15"
		case m <= 30:
			bucket = "16-30"
		case m <= 45:
			bucket = "31-45"
		case m <= 60:
			bucket = "46-60"
		case m <= 75:
			bucket = "61-75"
		case m <= 90:
			bucket = "76-90"
		default:
			bucket = "90+"
		}

		if !seen[bucket] {
			seen[bucket] = true
			intervals = append(intervals, bucket)
		}
	}

	return intervals
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
