// Package engine settles batches of sporting events: it acquires final
// scores, resolves each attached market, computes order payouts and
// assembles one settlement record per event.
package engine

import (
	"errors"
	"fmt"

	"github.com/oddsline/settlement-api/internal/types"
)

var (
	// ErrMissingLine marks an over/under market configured without a
	// line. Not retryable; it fails the owning event.
	ErrMissingLine = errors.New("no line provided for over/under market")

	// ErrUnknownMarketType marks a market type no resolver handles.
	ErrUnknownMarketType = errors.New("unknown market type")
)

// ResolveOutcome maps a market and the final score to a ternary outcome.
// Pure: no I/O, no side effects. Market types outside moneyline and
// over/under belong to the proposition resolver and hit the error arm
// here.
func ResolveOutcome(market types.Market, score types.Score) (types.MarketOutcome, error) {
	switch market.Type {
	case types.MarketMoneyline:
		switch {
		case score.Home > score.Away:
			return types.OutcomeHome, nil
		case score.Away > score.Home:
			return types.OutcomeAway, nil
		default:
			return types.OutcomeDraw, nil
		}

	case types.MarketOverUnder:
		if market.Line == nil {
			return "", fmt.Errorf("%w %s", ErrMissingLine, market.ID)
		}
		total := float64(score.Home + score.Away)
		switch {
		case total == *market.Line:
			// Total on the line is a push.
			return types.OutcomeDraw, nil
		case total > *market.Line:
			return types.OutcomeHome, nil
		default:
			return types.OutcomeAway, nil
		}

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMarketType, market.Type)
	}
}
