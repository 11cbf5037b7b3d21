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

// PostgresFactStore implements the store.FactStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFactStore creates a new PostgreSQL implementation of the FactStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFactStore(db store.DBTX, logger *slog.Logger) *PostgresFactStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFactStore{
		db:     db,
		logger: logger.With(slog.String("component", "fact_store")),
	}
}

// Ensure PostgresFactStore implements store.FactStore interface
var _ store.FactStore = (*PostgresFactStore)(nil)

// Create implements store.FactStore.Create
// It saves a new fact to the database, handling domain validation.
func (s *PostgresFactStore) Create(ctx context.Context, fact *domain.Fact) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := fact.Validate(); err != nil {
		log.Warn("fact validation failed during create",
			slog.String("error", err.Error()),
			slog.String("fact_id", fact.ID.String()))
		return err
	}

	query, args, err := psql.Insert("facts").
		Columns("id", "user_id", "deck_id", "expression", "reading", "meaning",
			"buried_until", "suspended_at", "created_at", "updated_at").
		Values(fact.ID, fact.UserID, fact.DeckID, fact.Expression, fact.Reading,
			fact.Meaning, fact.BuriedUntil, fact.SuspendedAt,
			fact.CreatedAt, fact.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build fact insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create fact",
			slog.String("error", err.Error()),
			slog.String("fact_id", fact.ID.String()),
			slog.String("user_id", fact.UserID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.FactStore.GetByID
// It retrieves a fact by its unique ID.
// Returns store.ErrFactNotFound if the fact does not exist.
func (s *PostgresFactStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fact, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("id", "user_id", "deck_id", "expression", "reading",
		"meaning", "buried_until", "suspended_at", "created_at", "updated_at").
		From("facts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build fact select: %w", err)
	}

	var fact domain.Fact
	var buriedUntil, suspendedAt sql.NullTime

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&fact.ID,
		&fact.UserID,
		&fact.DeckID,
		&fact.Expression,
		&fact.Reading,
		&fact.Meaning,
		&buriedUntil,
		&suspendedAt,
		&fact.CreatedAt,
		&fact.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("fact not found", slog.String("fact_id", id.String()))
			return nil, store.ErrFactNotFound
		}
		log.Error("failed to get fact by ID",
			slog.String("error", err.Error()),
			slog.String("fact_id", id.String()))
		return nil, MapError(err)
	}

	if buriedUntil.Valid {
		t := buriedUntil.Time
		fact.BuriedUntil = &t
	}
	if suspendedAt.Valid {
		t := suspendedAt.Time
		fact.SuspendedAt = &t
	}

	return &fact, nil
}

// BuriedFactIDs implements store.FactStore.BuriedFactIDs
// It returns the IDs of the user's facts whose burial has not yet expired.
// When excludedCardIDs is non-empty, buried facts whose cards are all
// excluded are skipped: every card of such a fact is already committed to
// the session, so burial cannot affect what else may be shown.
func (s *PostgresFactStore) BuriedFactIDs(
	ctx context.Context,
	userID uuid.UUID,
	excludedCardIDs []uuid.UUID,
	now time.Time,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select("f.id").
		From("facts f").
		Where(sq.Eq{"f.user_id": userID}).
		Where(sq.Gt{"f.buried_until": now})

	if len(excludedCardIDs) > 0 {
		// Built with ? placeholders; the outer builder renumbers them into
		// the final $n sequence when it renders.
		inner, innerArgs, err := sq.Select("1").
			From("cards c").
			Where("c.fact_id = f.id").
			Where(sq.NotEq{"c.id": excludedCardIDs}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build buried fact subquery: %w", err)
		}
		builder = builder.Where(fmt.Sprintf("EXISTS (%s)", inner), innerArgs...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build buried fact query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query buried facts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan buried fact row",
				slog.String("error", err.Error()))
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning buried fact rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return ids, nil
}

// WithTx implements store.FactStore.WithTx
// It returns a new FactStore instance that uses the provided transaction.
func (s *PostgresFactStore) WithTx(tx *sql.Tx) store.FactStore {
	return &PostgresFactStore{
		db:     tx,
		logger: s.logger,
	}
}
