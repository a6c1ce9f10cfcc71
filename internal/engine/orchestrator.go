package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/oddsline/settlement-api/internal/metrics"
	"github.com/oddsline/settlement-api/internal/props"
	"github.com/oddsline/settlement-api/internal/types"
	"github.com/rs/zerolog/log"
)

// ScoreSource is the provider surface the orchestrator needs. Implemented
// by provider.Client; tests substitute a stub.
type ScoreSource interface {
	// FetchFinal classifies one event's final state. It must not return
	// errors; failures degrade to an unavailable result.
	FetchFinal(ctx context.Context, providerEventID string) types.FetchResult

	// FetchMatchData returns the statistics and timeline needed to
	// settle proposition markets.
	FetchMatchData(ctx context.Context, providerEventID string) (*types.MatchData, error)

	// ResetCounter clears the provider's rolling request count at the
	// top of a run.
	ResetCounter()
}

// Orchestrator drives one settlement run over a batch of independent
// events. Each event settles inside its own failure boundary, so one bad
// event never aborts the rest; a second boundary around the whole run
// converts anything that still escapes into FAILED records instead of
// losing the partial results. The orchestrator holds no state between
// runs.
type Orchestrator struct {
	provider ScoreSource
}

// NewOrchestrator creates an orchestrator backed by the given provider.
// The provider is injected so callers control configuration and tests
// control behavior.
func NewOrchestrator(provider ScoreSource) *Orchestrator {
	return &Orchestrator{provider: provider}
}

// Settle runs one settlement pass over the batch. The returned result
// holds exactly one record per input event: settled events carry event
// and market updates plus order payouts, postponed events carry a
// cancellation with all markets closed, failed events carry an opaque
// error message. The batch is the orchestrator's working copy and is
// mutated in place as events conclude; callers must not run overlapping
// batches concurrently.
func (o *Orchestrator) Settle(ctx context.Context, batch types.Batch) *types.Result {
	logger := log.With().Str("component", "settlement_orchestrator").Logger()
	logger.Info().Int("event_count", len(batch)).Msg("starting settlement run")
	start := time.Now()

	o.provider.ResetCounter()

	result := &types.Result{
		Records: make(map[string]*types.SettlementRecord, len(batch)),
	}
	var payouts []types.PayoutRecord

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Msg("settlement run aborted, failing unprocessed events")
				for eventID := range batch {
					if _, ok := result.Records[eventID]; !ok {
						result.Records[eventID] = failedRecord(fmt.Sprintf("global settlement error: %v", r))
					}
				}
			}
		}()

		// Deterministic processing order; events are independent.
		eventIDs := make([]string, 0, len(batch))
		for eventID := range batch {
			eventIDs = append(eventIDs, eventID)
		}
		sort.Strings(eventIDs)

		for _, eventID := range eventIDs {
			record := o.settleEvent(ctx, eventID, batch[eventID])
			result.Records[eventID] = record
			payouts = append(payouts, record.Payouts...)
		}
	}()

	// Output cardinality must equal input cardinality: an event the run
	// somehow skipped is itself a bug and surfaces as FAILED.
	for eventID := range batch {
		if _, ok := result.Records[eventID]; !ok {
			logger.Warn().Str("event_id", eventID).Msg("event was not processed during settlement")
			result.Records[eventID] = failedRecord("event was not processed during settlement")
		}
	}

	result.UserPayouts = AggregatePayouts(payouts)

	settled, postponed, failed := result.Counts()
	metrics.EventsSettled.Add(float64(settled))
	metrics.EventsPostponed.Add(float64(postponed))
	metrics.EventsFailed.Add(float64(failed))
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	logger.Info().
		Int("events", len(batch)).
		Int("settled", settled).
		Int("postponed", postponed).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("settlement run complete")

	return result
}

// settleEvent settles a single event. The deferred recover is the
// per-event failure boundary: any panic becomes that event's FAILED
// record and the batch moves on.
func (o *Orchestrator) settleEvent(ctx context.Context, eventID string, entry *types.BatchEntry) (record *types.SettlementRecord) {
	logger := log.With().
		Str("component", "settlement_orchestrator").
		Str("event_id", eventID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("error processing event")
			record = failedRecord(fmt.Sprintf("error processing event %s: %v", eventID, r))
		}
	}()

	if entry == nil {
		return failedRecord("no event data")
	}
	if entry.Event.ProviderID == "" {
		return failedRecord("no provider id found or no event data")
	}

	fetch := o.provider.FetchFinal(ctx, entry.Event.ProviderID)
	switch fetch.Status {
	case types.FetchPostponed:
		logger.Info().Msg("event is postponed, cancelling")
		return o.postponeEvent(eventID, entry)
	case types.FetchUnavailable:
		reason := fetch.Reason
		if reason == "" {
			reason = "no provider event found"
		}
		logger.Error().Str("reason", reason).Msg("scores unavailable")
		return failedRecord(reason)
	}

	return o.completeEvent(ctx, eventID, entry, *fetch.Score)
}

// completeEvent resolves every market of an event with a final score and
// assembles the success record. Any single market failing its resolution
// fails the whole event.
func (o *Orchestrator) completeEvent(ctx context.Context, eventID string, entry *types.BatchEntry, score types.Score) *types.SettlementRecord {
	ordersByMarket := make(map[string][]types.Order, len(entry.Markets))
	for _, order := range entry.Orders {
		ordersByMarket[order.MarketID] = append(ordersByMarket[order.MarketID], order)
	}

	// Proposition data is fetched once per event, and only when a prop
	// market is actually attached.
	var bundle *props.Bundle

	record := &types.SettlementRecord{}
	for _, market := range entry.Markets {
		if market.ID == "" {
			return failedRecord(fmt.Sprintf("market with missing id on event %s", eventID))
		}

		switch {
		case market.Type == types.MarketMoneyline || market.Type == types.MarketOverUnder:
			outcome, err := ResolveOutcome(market, score)
			if err != nil {
				return failedRecord(fmt.Sprintf("error determining outcome for market %s: %v", market.ID, err))
			}
			record.MarketUpdates = append(record.MarketUpdates, types.MarketUpdate{
				MarketID: market.ID,
				Status:   types.MarketClosed,
				Outcome:  &outcome,
			})
			for _, order := range ordersByMarket[market.ID] {
				record.Payouts = append(record.Payouts, CalculatePayout(order, outcome))
			}

		case props.KnownMarket(market.Type):
			if bundle == nil {
				data, err := o.provider.FetchMatchData(ctx, entry.Event.ProviderID)
				if err != nil {
					return failedRecord(fmt.Sprintf("error fetching proposition data for event %s: %v", eventID, err))
				}
				resolved := props.Resolve(*data)
				bundle = &resolved
			}
			value, _ := bundle.Result(market.Type)
			record.MarketUpdates = append(record.MarketUpdates, types.MarketUpdate{
				MarketID:   market.ID,
				Status:     types.MarketClosed,
				PropResult: value,
			})

		default:
			return failedRecord(fmt.Sprintf("error determining outcome for market %s: unknown market type %q", market.ID, market.Type))
		}
	}

	resultStr := fmt.Sprintf("%d-%d", score.Home, score.Away)
	record.EventUpdate = &types.EventUpdate{
		EventID:   eventID,
		IsSettled: true,
		Result:    &resultStr,
		Status:    types.EventCompleted,
	}

	entry.Event.Status = types.EventCompleted
	entry.Event.Result = &resultStr
	for i := range entry.Markets {
		entry.Markets[i].Status = types.MarketClosed
	}

	return record
}

// postponeEvent cancels an event the provider marked postponed. Markets
// are closed with no outcome; no payouts are produced.
func (o *Orchestrator) postponeEvent(eventID string, entry *types.BatchEntry) *types.SettlementRecord {
	record := &types.SettlementRecord{
		EventUpdate: &types.EventUpdate{
			EventID:   eventID,
			IsSettled: true,
			Result:    nil,
			Status:    types.EventCancelled,
		},
	}

	for i, market := range entry.Markets {
		if market.ID == "" {
			continue
		}
		record.MarketUpdates = append(record.MarketUpdates, types.MarketUpdate{
			MarketID: market.ID,
			Status:   types.MarketClosed,
			Outcome:  nil,
		})
		entry.Markets[i].Status = types.MarketClosed
	}

	entry.Event.Status = types.EventCancelled
	entry.Event.Result = nil

	return record
}

func failedRecord(message string) *types.SettlementRecord {
	return &types.SettlementRecord{
		Error: "FATAL ERROR: " + message,
	}
}
