// Command seed populates a development database with a demo account, a deck
// of Japanese vocabulary and a realistic mix of due, new, buried and future
// cards, plus enough review history to put the account partway through its
// daily new-card budget. It is intended for local development, not production.
//
// Flags:
//
//	--email      email of the demo account (default demo@example.com)
//	--time-zone  IANA time zone of the demo account
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/studyloop/srs-api/internal/config"
	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/platform/logger"
	"github.com/studyloop/srs-api/internal/platform/postgres"
	"github.com/studyloop/srs-api/internal/store"
)

func main() {
	emailFlag := flag.String("email", "demo@example.com", "email of the demo account")
	timeZoneFlag := flag.String("time-zone", "America/Los_Angeles", "IANA time zone of the demo account")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.Setup(cfg.Server)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		appLogger.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		appLogger.Error("ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seed(ctx, db, appLogger, *emailFlag, *timeZoneFlag); err != nil {
		appLogger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("seed completed successfully", slog.String("email", *emailFlag))
}

// factSeed is one vocabulary entry plus how its cards should be staged.
type factSeed struct {
	expression string
	reading    string
	meaning    string

	// dueOffset shifts the recognition card's due time relative to now.
	// Negative means overdue, positive means scheduled in the future,
	// zero means the card is still new.
	dueOffset time.Duration

	buried bool
}

var demoFacts = []factSeed{
	{expression: "水", reading: "みず", meaning: "water", dueOffset: -48 * time.Hour},
	{expression: "火", reading: "ひ", meaning: "fire", dueOffset: -2 * time.Hour},
	{expression: "木", reading: "き", meaning: "tree", dueOffset: 72 * time.Hour},
	{expression: "金", reading: "かね", meaning: "money; gold", dueOffset: 24 * time.Hour},
	{expression: "土", reading: "つち", meaning: "earth; soil"},
	{expression: "日", reading: "ひ", meaning: "day; sun"},
	{expression: "月", reading: "つき", meaning: "moon; month", buried: true},
	{expression: "山", reading: "やま", meaning: "mountain"},
}

// seed writes the whole demo dataset in a single transaction so a partial
// failure leaves the database untouched.
func seed(ctx context.Context, db *sql.DB, appLogger *slog.Logger, email, timeZone string) error {
	user, err := domain.NewUser(email, timeZone)
	if err != nil {
		return fmt.Errorf("build demo user: %w", err)
	}

	deck, err := domain.NewDeck(user.ID, "Japanese Core", "Starter vocabulary for the demo account")
	if err != nil {
		return fmt.Errorf("build demo deck: %w", err)
	}

	now := time.Now().UTC()

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		users := postgres.NewPostgresUserStore(db, appLogger).WithTx(tx)
		decks := postgres.NewPostgresDeckStore(db, appLogger).WithTx(tx)
		facts := postgres.NewPostgresFactStore(db, appLogger).WithTx(tx)
		cards := postgres.NewPostgresCardStore(db, appLogger).WithTx(tx)
		reviews := postgres.NewPostgresReviewLogStore(db, appLogger).WithTx(tx)

		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := decks.Create(ctx, deck); err != nil {
			return fmt.Errorf("create deck: %w", err)
		}

		for _, fs := range demoFacts {
			fact, err := domain.NewFact(user.ID, deck.ID, fs.expression, fs.reading, fs.meaning)
			if err != nil {
				return fmt.Errorf("build fact %q: %w", fs.expression, err)
			}
			if fs.buried {
				until := now.Add(24 * time.Hour)
				fact.BuriedUntil = &until
			}
			if err := facts.Create(ctx, fact); err != nil {
				return fmt.Errorf("create fact %q: %w", fs.expression, err)
			}

			if err := seedCards(ctx, cards, reviews, user.ID, deck.ID, fact.ID, fs, now); err != nil {
				return fmt.Errorf("seed cards for %q: %w", fs.expression, err)
			}
		}

		return nil
	})
}

// seedCards creates the recognition and production cards for one fact.
// Facts with a dueOffset have already been learned: their recognition card is
// scheduled at now+dueOffset and gets a matching review log, while the
// production sibling stays new.
func seedCards(
	ctx context.Context,
	cards store.CardStore,
	reviews store.ReviewLogStore,
	userID, deckID, factID uuid.UUID,
	fs factSeed,
	now time.Time,
) error {
	recognition, err := domain.NewCard(userID, deckID, factID, domain.CardTemplateRecognition)
	if err != nil {
		return err
	}

	learned := fs.dueOffset != 0
	if learned {
		reviewedAt := now.Add(-30 * time.Minute)
		recognition.DueAt = now.Add(fs.dueOffset)
		recognition.LastReviewedAt = reviewedAt
	}

	if err := cards.Create(ctx, recognition); err != nil {
		return err
	}

	if learned {
		entry, err := domain.NewReviewLog(userID, recognition.ID, domain.ReviewGradeGood, true, now.Add(-30*time.Minute))
		if err != nil {
			return err
		}
		if err := reviews.Create(ctx, entry); err != nil {
			return err
		}
	}

	production, err := domain.NewCard(userID, deckID, factID, domain.CardTemplateProduction)
	if err != nil {
		return err
	}
	return cards.Create(ctx, production)
}
