package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
)

// ReviewLogStore defines the interface for review history persistence.
// Version: 1.0
type ReviewLogStore interface {
	// Create saves a review log entry.
	// Returns validation errors if the entry data is invalid.
	Create(ctx context.Context, log *domain.ReviewLog) error

	// CountFirstLearnedBetween returns the number of cards the user first
	// learned within the half-open interval [from, to). Both bounds are
	// instants; callers derive them from the user's local day boundary.
	CountFirstLearnedBetween(
		ctx context.Context,
		userID uuid.UUID,
		from, to time.Time,
	) (int, error)

	// WithTx returns a new ReviewLogStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
