package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/db"
)

func main() {
	// Sub-commands
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = os.Args[1:] // Shift args for flag parsing

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	switch cmd {
	case "stats":
		showStats(log)
	case "reset":
		resetDatabase(log)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tools <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  stats   Show row counts for every collection table")
	fmt.Println("  reset   Drop and recreate all collection tables")
}

func showStats(log zerolog.Logger) {
	dbPath := flag.String("db", "data/nps-hikes.db", "Database path")
	flag.Parse()

	database, err := db.New(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	counts, err := database.TableCounts()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count rows")
	}

	for _, table := range []string{"parks", "park_boundaries", "trails", "trail_elevations"} {
		fmt.Printf("%-18s %d\n", table, counts[table])
	}
}

func resetDatabase(log zerolog.Logger) {
	dbPath := flag.String("db", "data/nps-hikes.db", "Database path")
	yes := flag.Bool("yes", false, "Skip confirmation prompt")
	flag.Parse()

	if !*yes {
		fmt.Printf("This drops all collected data in %s. Continue? [y/N] ", *dbPath)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted")
			return
		}
	}

	database, err := db.New(*dbPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	if err := database.Reset(); err != nil {
		log.Fatal().Err(err).Msg("Failed to reset database")
	}
	log.Info().Str("db", *dbPath).Msg("Database reset")
}
