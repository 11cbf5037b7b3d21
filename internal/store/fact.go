package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
)

// FactStore defines the interface for fact data persistence and burial
// queries.
// Version: 1.0
type FactStore interface {
	// Create saves a new fact to the store.
	// Returns validation errors if the fact data is invalid.
	Create(ctx context.Context, fact *domain.Fact) error

	// GetByID retrieves a fact by its unique ID.
	// Returns ErrFactNotFound if the fact does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Fact, error)

	// BuriedFactIDs returns the IDs of the user's facts that are buried at
	// the given instant. Facts whose only remaining cards are all in
	// excludedCardIDs are not reported: those cards are already committed to
	// the current session, so their siblings' burial is moot for it.
	BuriedFactIDs(
		ctx context.Context,
		userID uuid.UUID,
		excludedCardIDs []uuid.UUID,
		now time.Time,
	) ([]uuid.UUID, error)

	// WithTx returns a new FactStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) FactStore
}

// DeckStore defines the interface for deck data persistence.
// Version: 1.0
type DeckStore interface {
	// Create saves a new deck to the store.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// WithTx returns a new DeckStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) DeckStore
}
