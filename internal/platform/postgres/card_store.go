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

// psql builds queries with PostgreSQL-style $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// cardPredicates translates a store.CardFilter into squirrel predicates.
// The same translation backs Exists, Count and NewCount so every query in a
// decision pass sees an identical scope.
func cardPredicates(filter store.CardFilter) sq.And {
	pred := sq.And{}

	if filter.AvailableOnly {
		pred = append(pred, sq.Eq{"suspended_at": nil})
	}
	if filter.UserID != nil {
		pred = append(pred, sq.Eq{"user_id": *filter.UserID})
	}
	if filter.DeckID != nil {
		pred = append(pred, sq.Eq{"deck_id": *filter.DeckID})
	}
	if len(filter.ExcludedIDs) > 0 {
		pred = append(pred, sq.NotEq{"id": filter.ExcludedIDs})
	}
	if filter.DueAtOrBefore != nil {
		pred = append(pred, sq.LtOrEq{"due_at": *filter.DueAtOrBefore})
	}
	if filter.DueAfter != nil {
		pred = append(pred, sq.Gt{"due_at": *filter.DueAfter})
	}
	if filter.NewOnly {
		pred = append(pred, sq.Eq{"last_reviewed_at": nil})
	}

	return pred
}

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query, args, err := psql.Insert("cards").
		Columns("id", "user_id", "deck_id", "fact_id", "template",
			"due_at", "last_reviewed_at", "suspended_at", "created_at", "updated_at").
		Values(card.ID, card.UserID, card.DeckID, card.FactID, card.Template,
			card.DueAt, nullableTime(card.LastReviewedAt), card.SuspendedAt,
			card.CreatedAt, card.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build card insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("user_id", card.UserID.String()))
		return MapError(err)
	}

	log.Debug("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", card.UserID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
// It retrieves a card by its unique ID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("id", "user_id", "deck_id", "fact_id", "template",
		"due_at", "last_reviewed_at", "suspended_at", "created_at", "updated_at").
		From("cards").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card select: %w", err)
	}

	var card domain.Card
	var template string
	var lastReviewedAt, suspendedAt sql.NullTime

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&card.ID,
		&card.UserID,
		&card.DeckID,
		&card.FactID,
		&template,
		&card.DueAt,
		&lastReviewedAt,
		&suspendedAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	card.Template = domain.CardTemplate(template)
	if lastReviewedAt.Valid {
		card.LastReviewedAt = lastReviewedAt.Time
	}
	if suspendedAt.Valid {
		t := suspendedAt.Time
		card.SuspendedAt = &t
	}

	return &card, nil
}

// Exists implements store.CardStore.Exists
// It reports whether at least one card matches the filter, using SELECT
// EXISTS so no rows are materialized.
func (s *PostgresCardStore) Exists(ctx context.Context, filter store.CardFilter) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select("1").From("cards")
	if pred := cardPredicates(filter); len(pred) > 0 {
		builder = builder.Where(pred)
	}

	inner, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build card exists query: %w", err)
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (%s)", inner)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		log.Error("failed to check card existence",
			slog.String("error", err.Error()))
		return false, MapError(err)
	}

	return exists, nil
}

// Count implements store.CardStore.Count
// It returns the number of cards matching the filter.
func (s *PostgresCardStore) Count(ctx context.Context, filter store.CardFilter) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select("COUNT(*)").From("cards")
	if pred := cardPredicates(filter); len(pred) > 0 {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build card count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count cards",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return count, nil
}

// NewCount implements store.CardStore.NewCount
// It returns the number of never-reviewed cards matching the filter,
// optionally excluding cards whose facts are buried.
func (s *PostgresCardStore) NewCount(
	ctx context.Context,
	filter store.CardFilter,
	includingBuried bool,
	buriedFactIDs []uuid.UUID,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pred := cardPredicates(filter.New())
	if !includingBuried && len(buriedFactIDs) > 0 {
		pred = append(pred, sq.NotEq{"fact_id": buriedFactIDs})
	}

	query, args, err := psql.Select("COUNT(*)").From("cards").Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build new card count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count new cards",
			slog.String("error", err.Error()),
			slog.Bool("including_buried", includingBuried))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore instance that uses the provided transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullableTime converts a zero time to NULL for insertion.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
