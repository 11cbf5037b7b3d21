package main

import (
	"database/sql"
	"log/slog"

	"github.com/studyloop/srs-api/internal/api"
	"github.com/studyloop/srs-api/internal/config"
	"github.com/studyloop/srs-api/internal/platform/postgres"
	"github.com/studyloop/srs-api/internal/service/review"
	"github.com/studyloop/srs-api/internal/store"
)

// application holds the wired dependencies of one server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	cardStore      store.CardStore
	factStore      store.FactStore
	deckStore      store.DeckStore
	reviewLogStore store.ReviewLogStore

	evaluator     *review.Evaluator
	reviewHandler *api.ReviewHandler
}

// newApplication wires the stores, the availability evaluator and the HTTP
// handlers against the given database connection.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) *application {
	cardStore := postgres.NewPostgresCardStore(db, logger)
	factStore := postgres.NewPostgresFactStore(db, logger)
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)
	reviewLogStore := postgres.NewPostgresReviewLogStore(db, logger)

	evaluator := review.NewEvaluator(
		cardStore,
		factStore,
		reviewLogStore,
		cfg.Review.StartOfDayHour,
		logger,
	)

	reviewHandler := api.NewReviewHandler(evaluator, userStore, logger)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userStore:      userStore,
		cardStore:      cardStore,
		factStore:      factStore,
		deckStore:      deckStore,
		reviewLogStore: reviewLogStore,
		evaluator:      evaluator,
		reviewHandler:  reviewHandler,
	}
}
