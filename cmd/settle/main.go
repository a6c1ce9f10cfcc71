package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oddsline/settlement-api/internal/config"
	"github.com/oddsline/settlement-api/internal/engine"
	"github.com/oddsline/settlement-api/internal/provider"
	"github.com/oddsline/settlement-api/internal/types"
)

// init configures pretty console logging for interactive runs.
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// cmd/settle runs one settlement pass over a batch loaded from a JSON
// file and writes the coupled updates to an output file. Run history is
// not recorded; this is the operational escape hatch when the API is
// not running.
func main() {
	eventsFile := flag.String("events", "", "path to events batch JSON file")
	outFile := flag.String("out", "settlement_results.json", "path to write settlement results")
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if *eventsFile == "" {
		log.Fatal().Msg("missing required -events flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	data, err := os.ReadFile(*eventsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *eventsFile).Msg("failed to read events file")
	}

	var batch types.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		log.Fatal().Err(err).Msg("failed to parse events file")
	}
	if len(batch) == 0 {
		log.Fatal().Msg("events file contains no events")
	}

	providerClient := provider.NewClientWithConfig(provider.Config{
		BaseURL:       cfg.Provider.BaseURL,
		APIKey:        cfg.Provider.APIKey,
		Timeout:       cfg.Provider.Timeout,
		Cooldown:      cfg.Provider.Cooldown,
		MaxRetries:    cfg.Provider.MaxRetries,
		ThrottleAfter: cfg.Provider.ThrottleAfter,
	})

	orchestrator := engine.NewOrchestrator(providerClient)
	result := orchestrator.Settle(context.Background(), batch)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal settlement results")
	}
	if err := os.WriteFile(*outFile, out, 0o644); err != nil {
		log.Fatal().Err(err).Str("file", *outFile).Msg("failed to write settlement results")
	}

	settled, postponed, failed := result.Counts()
	log.Info().
		Int("events", len(batch)).
		Int("settled", settled).
		Int("postponed", postponed).
		Int("failed", failed).
		Str("output", *outFile).
		Msg("settlement run complete")
}
