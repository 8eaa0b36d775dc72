package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/collector"
	"nps-hikes/internal/config"
	"nps-hikes/internal/db"
	"nps-hikes/internal/nps"
	"nps-hikes/internal/overpass"
	"nps-hikes/internal/usgs"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to YAML config file")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	stage := flag.String("stage", "all", "Stage to run: parks, trails, elevation, or all")
	parksFlag := flag.String("parks", "", "Comma-separated park codes to collect (overrides config)")
	forceRefresh := flag.Bool("force-refresh", false, "Re-collect entities that already have data")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *parksFlag != "" {
		cfg.Collection.Parks = splitCodes(*parksFlag)
	}
	if *forceRefresh {
		cfg.Collection.ForceRefresh = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	stages, err := resolveStages(*stage)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid stage")
	}
	if stages["parks"] {
		if err := cfg.ValidateForNPS(); err != nil {
			log.Fatal().Err(err).Msg("Invalid config")
		}
	}

	// Initialize database
	database, err := db.New(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received interrupt signal, shutting down")
		cancel()
	}()

	startTime := time.Now()

	if stages["parks"] {
		runStage(ctx, log, "parks", func() (collector.Stats, error) {
			client := nps.NewClient(cfg.NPS.BaseURL, cfg.NPS.APIKey, cfg.NPSTimeout(), cfg.NPSDelay(), log)
			c := collector.NewParkCollector(database, client, collector.ParkOptions{
				ForceRefresh:  cfg.Collection.ForceRefresh,
				Parks:         cfg.Collection.Parks,
				VisitLogPath:  cfg.Collection.VisitLogPath,
				Delay:         cfg.NPSDelay(),
				ProgressEvery: cfg.Collection.ProgressEvery,
			}, log)
			return c.Run(ctx)
		})
	}

	if stages["trails"] {
		runStage(ctx, log, "trails", func() (collector.Stats, error) {
			client := overpass.NewClient(cfg.Overpass.BaseURL, cfg.OverpassTimeout(), log)
			c := collector.NewTrailCollector(database, client, collector.TrailOptions{
				ForceRefresh:  cfg.Collection.ForceRefresh,
				Parks:         cfg.Collection.Parks,
				Delay:         cfg.OverpassDelay(),
				ProgressEvery: cfg.Collection.ProgressEvery,
			}, log)
			return c.Run(ctx)
		})
	}

	if stages["elevation"] {
		runStage(ctx, log, "elevation", func() (collector.Stats, error) {
			client := usgs.NewClient(cfg.USGS.BaseURL, cfg.USGSTimeout(), cfg.USGSDelay(), log)
			c := collector.NewElevationCollector(database, client, collector.ElevationOptions{
				SampleIntervalM: cfg.USGS.SampleIntervalM,
				ForceRefresh:    cfg.Collection.ForceRefresh,
				Parks:           cfg.Collection.Parks,
				ProgressEvery:   cfg.Collection.ProgressEvery,
			}, log)
			return c.Run(ctx)
		})
	}

	log.Info().Dur("elapsed", time.Since(startTime)).Msg("Collection finished")
}

// runStage runs one collection stage, exiting the process on any error
// other than user cancellation.
func runStage(ctx context.Context, log zerolog.Logger, name string, run func() (collector.Stats, error)) {
	log.Info().Str("stage", name).Msg("Starting stage")

	stats, err := run()
	if err != nil {
		if ctx.Err() == context.Canceled {
			log.Warn().Str("stage", name).Msg("Stage cancelled by user")
			os.Exit(130)
		}
		log.Fatal().Err(err).Str("stage", name).Msg("Stage failed")
	}

	log.Info().Str("stage", name).
		Int("processed", stats.Processed).Int("complete", stats.Complete).
		Int("partial", stats.Partial).Int("failed", stats.Failed).Int("skipped", stats.Skipped).
		Msg("Stage finished")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.NPS.APIKey = os.Getenv("NPS_API_KEY")
		return cfg, nil
	}
	return config.Load(path)
}

func resolveStages(stage string) (map[string]bool, error) {
	switch stage {
	case "all":
		return map[string]bool{"parks": true, "trails": true, "elevation": true}, nil
	case "parks", "trails", "elevation":
		return map[string]bool{stage: true}, nil
	}
	return nil, fmt.Errorf("unknown stage %q (want parks, trails, elevation, or all)", stage)
}

func splitCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}
