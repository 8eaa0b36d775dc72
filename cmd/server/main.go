package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/api"
	"nps-hikes/internal/config"
	"nps-hikes/internal/db"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Initialize database
	database, err := db.New(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	// Create router
	router := api.NewRouter(database, log)

	log.Info().Str("addr", cfg.Server.Addr).Str("db", cfg.Database.Path).Msg("Starting server")

	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
