package engine

import (
	"github.com/oddsline/settlement-api/internal/types"
)

// CalculatePayout settles one order against a market outcome. Pure.
//
// Orders still open at settlement time were never matched: they expire
// with the full stake withheld and no reward, bypassing the win/loss
// arithmetic. A draw outcome is a push and returns the filled amount.
// Otherwise a buy wins on HOME and a sell wins on AWAY; fulfilled odds
// override quoted odds when present.
func CalculatePayout(order types.Order, outcome types.MarketOutcome) types.PayoutRecord {
	record := types.PayoutRecord{
		OrderID:  order.ID,
		UserID:   order.UserID,
		MarketID: order.MarketID,
	}

	if order.Status == types.OrderOpen {
		record.Status = types.OrderExpired
		record.WithheldAmount = order.Amount
		return record
	}

	if outcome == types.OutcomeDraw {
		record.Status = types.OrderPush
		record.RewardAmount = order.FilledAmount
		return record
	}

	won := (outcome == types.OutcomeHome && order.Side == types.SideBuy) ||
		(outcome == types.OutcomeAway && order.Side == types.SideSell)
	if !won {
		record.Status = types.OrderLost
		record.RewardAmount = -order.FilledAmount
		return record
	}

	odds := order.Odds
	if order.FulfilledOdds != nil {
		odds = *order.FulfilledOdds
	}

	record.Status = types.OrderWon
	if order.Side == types.SideBuy {
		record.RewardAmount = order.FilledAmount*odds - order.FilledAmount
	} else {
		record.RewardAmount = order.FilledAmount/(odds-1) + order.FilledAmount
	}
	return record
}

// AggregatePayouts groups payout records into per-user summaries. The
// per-user order list preserves the input record order; the ordering of
// users follows first appearance, which callers must not rely on.
func AggregatePayouts(records []types.PayoutRecord) []types.UserPayout {
	index := make(map[string]int)
	payouts := make([]types.UserPayout, 0)

	for _, record := range records {
		i, ok := index[record.UserID]
		if !ok {
			i = len(payouts)
			index[record.UserID] = i
			payouts = append(payouts, types.UserPayout{UserID: record.UserID})
		}
		payouts[i].TotalRewardAmount += record.RewardAmount
		payouts[i].TotalWithheldAmount += record.WithheldAmount
		payouts[i].Orders = append(payouts[i].Orders, record)
	}

	return payouts
}
