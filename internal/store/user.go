package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Version: 1.0
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if a user with the same email already exists.
	// Returns validation errors if the user data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateNewCardsPerDayLimitOverride persists the user's adopted daily
	// limit override, or clears it when override is nil.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateNewCardsPerDayLimitOverride(ctx context.Context, id uuid.UUID, override *int) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
