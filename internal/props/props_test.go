package props

import (
	"reflect"
	"testing"

	"github.com/oddsline/settlement-api/internal/types"
)

func goal(team string, minute int) types.TimelineEntry {
	return types.TimelineEntry{Type: types.TimelineGoal, Team: team, Minute: minute}
}

func TestResolveScoreDerivedMarkets(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 3, Away: 1},
		Timeline: []types.TimelineEntry{
			goal("home", 12),
			goal("away", 40),
			goal("home", 55),
			goal("home", 88),
		},
	})

	if bundle.GoalTotals.ExactGoals != 4 {
		t.Errorf("expected 4 exact goals, got %d", bundle.GoalTotals.ExactGoals)
	}
	if bundle.GoalTotals.TeamTotals.Home != 3 || bundle.GoalTotals.TeamTotals.Away != 1 {
		t.Errorf("expected team totals 3/1, got %+v", bundle.GoalTotals.TeamTotals)
	}
	if !bundle.BothTeamsToScore {
		t.Error("expected both teams to score")
	}
	if bundle.CorrectScore != "3-1" {
		t.Errorf("expected correct score 3-1, got %s", bundle.CorrectScore)
	}
	if bundle.WinningMargin != 2 {
		t.Errorf("expected winning margin 2, got %d", bundle.WinningMargin)
	}
	if bundle.OddEvenGoals != "even" {
		t.Errorf("expected even goals, got %s", bundle.OddEvenGoals)
	}
	if bundle.TeamToScoreFirst != "home" {
		t.Errorf("expected home to score first, got %s", bundle.TeamToScoreFirst)
	}
	if bundle.TeamToScoreLast != "home" {
		t.Errorf("expected home to score last, got %s", bundle.TeamToScoreLast)
	}
}

func TestResolveDoubleChance(t *testing.T) {
	tests := []struct {
		name     string
		home     int
		away     int
		expected []string
	}{
		{"home win", 2, 0, []string{"homeOrDraw", "homeOrAway"}},
		{"away win", 0, 1, []string{"drawOrAway", "homeOrAway"}},
		{"draw satisfies both draw selections", 1, 1, []string{"homeOrDraw", "drawOrAway"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveDoubleChance(tt.home, tt.away)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTeamToScoreFirstEmptyTimeline(t *testing.T) {
	bundle := Resolve(types.MatchData{Score: types.Score{Home: 0, Away: 0}})

	if bundle.TeamToScoreFirst != "noGoal" {
		t.Errorf("expected noGoal with empty timeline, got %s", bundle.TeamToScoreFirst)
	}
	if bundle.TeamToScoreLast != "noGoal" {
		t.Errorf("expected noGoal with empty timeline, got %s", bundle.TeamToScoreLast)
	}
}

func TestTeamToScoreFirstMinuteZero(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score:    types.Score{Home: 1, Away: 0},
		Timeline: []types.TimelineEntry{goal("home", 0)},
	})

	if bundle.TeamToScoreFirst != "home" {
		t.Errorf("minute-0 goal must count, got %s", bundle.TeamToScoreFirst)
	}
}

func TestTeamToScoreFirstUsesMinuteOrderNotInputOrder(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 1, Away: 1},
		Timeline: []types.TimelineEntry{
			goal("home", 70),
			goal("away", 5),
		},
	})

	if bundle.TeamToScoreFirst != "away" {
		t.Errorf("expected away first by minute, got %s", bundle.TeamToScoreFirst)
	}
	if bundle.TeamToScoreLast != "home" {
		t.Errorf("expected home last by minute, got %s", bundle.TeamToScoreLast)
	}
}

func TestResolveGoalTimingIntervals(t *testing.T) {
	minutes := []int{0, 15, 16, 45, 46, 90, 91}
	var timeline []types.TimelineEntry
	for _, m := range minutes {
		timeline = append(timeline, goal("home", m))
	}

	bundle := Resolve(types.MatchData{
		Score:    types.Score{Home: len(minutes)},
		Timeline: timeline,
	})

	expected := []string{"0-15", "16-30", "31-45", "46-60", "76-90", "90+"}
	if !reflect.DeepEqual(bundle.GoalTimingIntervals, expected) {
		t.Errorf("expected intervals %v, got %v", expected, bundle.GoalTimingIntervals)
	}
}

func TestGoalTimingIntervalMinute45(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score:    types.Score{Home: 1},
		Timeline: []types.TimelineEntry{goal("home", 45)},
	})

	if !reflect.DeepEqual(bundle.GoalTimingIntervals, []string{"31-45"}) {
		t.Errorf("minute 45 must land in 31-45, got %v", bundle.GoalTimingIntervals)
	}
	// And count toward the first half.
	if !bundle.HalfTimeResults.HomeWin {
		t.Error("minute-45 goal must count as first half")
	}
}

func TestResolveGoalTimings(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 2},
		Timeline: []types.TimelineEntry{
			goal("home", 10),
			goal("home", 80),
		},
	})

	if !bundle.GoalTimings.GoalIn1st10Minutes {
		t.Error("minute-10 goal must flag an early goal")
	}
	if !bundle.GoalTimings.GoalInLast10Minutes {
		t.Error("minute-80 goal must flag a late goal")
	}

	mid := Resolve(types.MatchData{
		Score:    types.Score{Home: 1},
		Timeline: []types.TimelineEntry{goal("home", 50)},
	})
	if mid.GoalTimings.GoalIn1st10Minutes || mid.GoalTimings.GoalInLast10Minutes {
		t.Errorf("minute-50 goal must flag neither timing, got %+v", mid.GoalTimings)
	}
}

func TestResolveHalfWithMostGoals(t *testing.T) {
	tests := []struct {
		name     string
		timeline []types.TimelineEntry
		home     int
		away     int
		expected string
	}{
		{
			"first half",
			[]types.TimelineEntry{goal("home", 20), goal("away", 30), goal("home", 60)},
			2, 1, "firstHalf",
		},
		{
			"second half",
			[]types.TimelineEntry{goal("home", 50), goal("home", 70)},
			2, 0, "secondHalf",
		},
		{
			"equal",
			[]types.TimelineEntry{goal("home", 20), goal("away", 60)},
			1, 1, "equal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := Resolve(types.MatchData{
				Score:    types.Score{Home: tt.home, Away: tt.away},
				Timeline: tt.timeline,
			})
			if bundle.HalfWithMostGoals != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, bundle.HalfWithMostGoals)
			}
		})
	}
}

func TestResolveHalftimeFulltime(t *testing.T) {
	tests := []struct {
		name     string
		timeline []types.TimelineEntry
		home     int
		away     int
		expected string
	}{
		{
			"home leads then away wins",
			[]types.TimelineEntry{goal("home", 20), goal("away", 60), goal("away", 75)},
			1, 2, "homeAway",
		},
		{
			"draw throughout",
			nil,
			0, 0, "drawDraw",
		},
		{
			"level at half then home wins",
			[]types.TimelineEntry{goal("home", 50)},
			1, 0, "drawHome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := Resolve(types.MatchData{
				Score:    types.Score{Home: tt.home, Away: tt.away},
				Timeline: tt.timeline,
			})
			if bundle.HalftimeFulltime != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, bundle.HalftimeFulltime)
			}
		})
	}
}

func TestResolveRedCardAndOwnGoal(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 1, Away: 0},
		Timeline: []types.TimelineEntry{
			{Type: types.TimelineCard, Detail: "Red Card (second yellow)", Team: "away", Minute: 70},
			{Type: types.TimelineGoal, Detail: "Own Goal", Team: "home", Minute: 30},
		},
	})

	if !bundle.RedCard {
		t.Error("expected red card from card detail text")
	}
	if !bundle.OwnGoal {
		t.Error("expected own goal from goal detail text")
	}

	clean := Resolve(types.MatchData{
		Score:    types.Score{Home: 1, Away: 0},
		Timeline: []types.TimelineEntry{goal("home", 10)},
	})
	if clean.RedCard || clean.OwnGoal {
		t.Error("expected no red card or own goal for a clean match")
	}
}

func TestResolveStatTotals(t *testing.T) {
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 2, Away: 1},
		Stats: []types.StatLine{
			{Name: "Corner Kicks", Home: "6", Away: "4"},
			{Name: "Fouls", Home: "12", Away: "9"},
			{Name: "Total Shots", Home: "15", Away: "8"},
			{Name: "Shots on Goal", Home: "7", Away: "3"},
			{Name: "Offsides", Home: "2", Away: "1"},
			{Name: "Yellow Cards", Home: "3", Away: "1"},
			{Name: "Red Cards", Home: "0", Away: "1"},
		},
	})

	if bundle.CornerTotals.ExactCorners != 10 {
		t.Errorf("expected 10 corners, got %d", bundle.CornerTotals.ExactCorners)
	}
	if bundle.CornerTotals.TeamTotals.Home != 6 {
		t.Errorf("expected 6 home corners, got %v", bundle.CornerTotals.TeamTotals.Home)
	}
	if bundle.FoulTotals.OverUnder != 21 {
		t.Errorf("expected 21 fouls, got %v", bundle.FoulTotals.OverUnder)
	}
	if bundle.ShotsTotals.OverUnder != 23 {
		t.Errorf("expected 23 shots, got %v", bundle.ShotsTotals.OverUnder)
	}
	if bundle.ShotsTotals.ShotsOnTarget != 10 {
		t.Errorf("expected 10 shots on target, got %v", bundle.ShotsTotals.ShotsOnTarget)
	}
	if bundle.OffsideTotals.OverUnder != 3 {
		t.Errorf("expected 3 offsides, got %v", bundle.OffsideTotals.OverUnder)
	}
	if bundle.CardTotals.ExactCards != 5 {
		t.Errorf("expected 5 cards, got %d", bundle.CardTotals.ExactCards)
	}
	if bundle.CardTotals.TeamTotals.Home != 3 || bundle.CardTotals.TeamTotals.Away != 2 {
		t.Errorf("expected card split 3/2, got %+v", bundle.CardTotals.TeamTotals)
	}
}

func TestResolveCardTotalsTimelineFallback(t *testing.T) {
	// No card statistics at all: counts fall back to timeline entries.
	bundle := Resolve(types.MatchData{
		Score: types.Score{Home: 0, Away: 0},
		Timeline: []types.TimelineEntry{
			{Type: types.TimelineYellowCard, Team: "home", Minute: 15},
			{Type: types.TimelineYellowCard, Team: "away", Minute: 40},
			{Type: types.TimelineRedCard, Team: "away", Minute: 85},
		},
	})

	if bundle.CardTotals.ExactCards != 3 {
		t.Errorf("expected 3 cards from timeline fallback, got %d", bundle.CardTotals.ExactCards)
	}
	if bundle.CardTotals.TeamTotals.Home != 1 || bundle.CardTotals.TeamTotals.Away != 2 {
		t.Errorf("expected card split 1/2, got %+v", bundle.CardTotals.TeamTotals)
	}
}
