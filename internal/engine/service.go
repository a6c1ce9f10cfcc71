package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oddsline/settlement-api/internal/props"
	"github.com/oddsline/settlement-api/internal/store"
	"github.com/oddsline/settlement-api/internal/types"
	"github.com/rs/zerolog/log"
)

// Service wraps the orchestrator for the serving shell: it runs
// settlements, records run history and exposes the proposition resolver
// for single events. The db may be nil (CLI runs without history).
type Service struct {
	orchestrator *Orchestrator
	provider     ScoreSource
	db           *store.Database
}

func NewService(provider ScoreSource, db *store.Database) *Service {
	return &Service{
		orchestrator: NewOrchestrator(provider),
		provider:     provider,
		db:           db,
	}
}

// RunSettlement settles one batch and records the run. A history write
// failure is logged but does not discard the computed result: the caller
// still needs the updates.
func (s *Service) RunSettlement(ctx context.Context, batch types.Batch) (*types.Result, *store.Run, error) {
	logger := log.With().Str("service", "settlement").Logger()

	runID := "RUN_" + uuid.New().String()
	start := time.Now()

	result := s.orchestrator.Settle(ctx, batch)

	settled, postponed, failed := result.Counts()
	resultJSON, err := json.Marshal(result)
	if err != nil {
		logger.Error().Err(err).Str("run_id", runID).Msg("failed to marshal run result")
		resultJSON = []byte("{}")
	}

	run := &store.Run{
		RunID:          runID,
		EventCount:     len(batch),
		SettledCount:   settled,
		PostponedCount: postponed,
		FailedCount:    failed,
		DurationMs:     time.Since(start).Milliseconds(),
		Result:         string(resultJSON),
		CreatedAt:      time.Now(),
	}

	if s.db != nil {
		runEvents := make([]store.RunEvent, 0, len(result.Records))
		for eventID, record := range result.Records {
			runEvents = append(runEvents, store.RunEvent{
				RunID:       runID,
				EventID:     eventID,
				Disposition: disposition(record),
				Error:       record.Error,
			})
		}
		if err := s.db.CreateRun(run, runEvents); err != nil {
			logger.Error().Err(err).Str("run_id", runID).Msg("failed to persist run history")
		}
	}

	return result, run, nil
}

// ResolveProps fetches one event's match data and derives the full
// proposition bundle.
func (s *Service) ResolveProps(ctx context.Context, providerEventID string) (*props.Bundle, error) {
	data, err := s.provider.FetchMatchData(ctx, providerEventID)
	if err != nil {
		return nil, err
	}
	bundle := props.Resolve(*data)
	return &bundle, nil
}

// GetDB exposes the run-history store to the handlers layer.
func (s *Service) GetDB() *store.Database {
	return s.db
}

func disposition(record *types.SettlementRecord) string {
	switch {
	case record.Failed():
		return "failed"
	case record.EventUpdate != nil && record.EventUpdate.Status == types.EventCancelled:
		return "postponed"
	default:
		return "settled"
	}
}
