package engine

import (
	"errors"
	"testing"

	"github.com/oddsline/settlement-api/internal/types"
)

func line(v float64) *float64 {
	return &v
}

func TestResolveOutcomeMoneyline(t *testing.T) {
	tests := []struct {
		name     string
		home     int
		away     int
		expected types.MarketOutcome
	}{
		{"home win", 3, 1, types.OutcomeHome},
		{"away win", 0, 2, types.OutcomeAway},
		{"draw", 1, 1, types.OutcomeDraw},
		{"goalless draw", 0, 0, types.OutcomeDraw},
	}

	market := types.Market{ID: "m1", Type: types.MarketMoneyline}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ResolveOutcome(market, types.Score{Home: tt.home, Away: tt.away})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome != tt.expected {
				t.Errorf("expected outcome %q for %d-%d, got %q", tt.expected, tt.home, tt.away, outcome)
			}
		})
	}
}

func TestResolveOutcomeOverUnder(t *testing.T) {
	tests := []struct {
		name     string
		line     float64
		home     int
		away     int
		expected types.MarketOutcome
	}{
		{"over", 2.5, 2, 1, types.OutcomeHome},
		{"under", 2.5, 1, 0, types.OutcomeAway},
		{"total on line is a push", 3.0, 2, 1, types.OutcomeDraw},
		{"zero line over", 0.5, 1, 0, types.OutcomeHome},
		{"zero line under", 0.5, 0, 0, types.OutcomeAway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := types.Market{ID: "m1", Type: types.MarketOverUnder, Line: line(tt.line)}
			outcome, err := ResolveOutcome(market, types.Score{Home: tt.home, Away: tt.away})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome != tt.expected {
				t.Errorf("expected outcome %q for total %d on line %v, got %q", tt.expected, tt.home+tt.away, tt.line, outcome)
			}
		})
	}
}

func TestResolveOutcomeMissingLine(t *testing.T) {
	market := types.Market{ID: "m1", Type: types.MarketOverUnder}

	_, err := ResolveOutcome(market, types.Score{Home: 1, Away: 0})
	if !errors.Is(err, ErrMissingLine) {
		t.Errorf("expected ErrMissingLine, got %v", err)
	}
}

func TestResolveOutcomeUnknownType(t *testing.T) {
	market := types.Market{ID: "m1", Type: "spread"}

	_, err := ResolveOutcome(market, types.Score{Home: 1, Away: 0})
	if !errors.Is(err, ErrUnknownMarketType) {
		t.Errorf("expected ErrUnknownMarketType, got %v", err)
	}
}
