package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/platform/logger"
	"github.com/studyloop/srs-api/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the ReviewLogStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create
// It saves a review log entry, handling domain validation.
func (s *PostgresReviewLogStore) Create(ctx context.Context, reviewLog *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reviewLog.Validate(); err != nil {
		log.Warn("review log validation failed during create",
			slog.String("error", err.Error()),
			slog.String("review_log_id", reviewLog.ID.String()))
		return err
	}

	query, args, err := psql.Insert("review_logs").
		Columns("id", "user_id", "card_id", "grade", "first_learned", "reviewed_at").
		Values(reviewLog.ID, reviewLog.UserID, reviewLog.CardID, reviewLog.Grade,
			reviewLog.FirstLearned, reviewLog.ReviewedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review log insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("review_log_id", reviewLog.ID.String()),
			slog.String("user_id", reviewLog.UserID.String()))
		return MapError(err)
	}

	return nil
}

// CountFirstLearnedBetween implements store.ReviewLogStore.CountFirstLearnedBetween
// It counts the cards the user first learned within [from, to).
func (s *PostgresReviewLogStore) CountFirstLearnedBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("COUNT(*)").
		From("review_logs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"first_learned": true}).
		Where(sq.GtOrEq{"reviewed_at": from}).
		Where(sq.Lt{"reviewed_at": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build first-learned count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count first-learned reviews",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.ReviewLogStore.WithTx
// It returns a new ReviewLogStore instance that uses the provided transaction.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}
