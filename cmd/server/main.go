// Package main implements the entry point for the SRS API server, which
// answers review availability queries for users' spaced repetition
// flashcards.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/studyloop/srs-api/internal/config"
	"github.com/studyloop/srs-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run database migrations (up|down|status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, connects to the database and either applies
// migrations or starts the HTTP server.
func run(migrateCmd string) error {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"start_of_day_hour", cfg.Review.StartOfDayHour)

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if migrateCmd != "" {
		return runMigrations(db, migrateCmd, appLogger)
	}

	app := newApplication(cfg, db, appLogger)
	return app.serve()
}
