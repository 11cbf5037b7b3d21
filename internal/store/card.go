package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
)

// CardFilter describes a composable scope over a user's cards. Each narrowing
// method returns a narrowed copy, leaving the receiver untouched, so a base
// filter can be built once and reused for several queries — the availability
// layer depends on that to keep one decision pass internally consistent.
//
// The zero value matches every card.
type CardFilter struct {
	// AvailableOnly restricts the scope to active (non-suspended) cards.
	AvailableOnly bool

	// UserID restricts the scope to cards owned by the given user.
	UserID *uuid.UUID

	// DeckID restricts the scope to cards in the given deck.
	DeckID *uuid.UUID

	// ExcludedIDs removes specific cards from the scope.
	ExcludedIDs []uuid.UUID

	// DueAtOrBefore restricts the scope to cards due at or before the instant.
	DueAtOrBefore *time.Time

	// DueAfter restricts the scope to cards due strictly after the instant.
	DueAfter *time.Time

	// NewOnly restricts the scope to cards that have never been reviewed.
	NewOnly bool
}

// Available narrows the filter to active (non-suspended) cards.
func (f CardFilter) Available() CardFilter {
	f.AvailableOnly = true
	return f
}

// OfUser narrows the filter to cards owned by the given user.
func (f CardFilter) OfUser(userID uuid.UUID) CardFilter {
	f.UserID = &userID
	return f
}

// OfDeck narrows the filter to cards in the given deck.
func (f CardFilter) OfDeck(deckID uuid.UUID) CardFilter {
	f.DeckID = &deckID
	return f
}

// ExcludingIDs narrows the filter by removing the given card IDs.
// The slice is copied so later mutation by the caller cannot leak in.
func (f CardFilter) ExcludingIDs(ids []uuid.UUID) CardFilter {
	if len(ids) == 0 {
		return f
	}
	excluded := make([]uuid.UUID, 0, len(f.ExcludedIDs)+len(ids))
	excluded = append(excluded, f.ExcludedIDs...)
	excluded = append(excluded, ids...)
	f.ExcludedIDs = excluded
	return f
}

// Due narrows the filter to cards due at or before the given instant.
func (f CardFilter) Due(now time.Time) CardFilter {
	f.DueAtOrBefore = &now
	return f
}

// DueAfterTime narrows the filter to cards due strictly after the given
// instant. Used for the early-review check, which must not overlap Due.
func (f CardFilter) DueAfterTime(now time.Time) CardFilter {
	f.DueAfter = &now
	return f
}

// New narrows the filter to cards that have never been reviewed.
func (f CardFilter) New() CardFilter {
	f.NewOnly = true
	return f
}

// CardStore defines the interface for card data persistence and the filtered
// count/existence queries the review availability layer is built on.
// Version: 1.0
type CardStore interface {
	// Create saves a new card to the store.
	// All cards must be valid according to domain validation rules.
	// Returns validation errors if the card data is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Exists reports whether at least one card matches the filter.
	// Implementations must answer this without materializing rows
	// (SELECT EXISTS or equivalent).
	Exists(ctx context.Context, filter CardFilter) (bool, error)

	// Count returns the number of cards matching the filter.
	Count(ctx context.Context, filter CardFilter) (int, error)

	// NewCount returns the number of never-reviewed cards matching the
	// filter. When includingBuried is false, cards whose fact appears in
	// buriedFactIDs are excluded; callers are expected to compute the buried
	// set once (via FactStore.BuriedFactIDs) and reuse it across calls.
	NewCount(
		ctx context.Context,
		filter CardFilter,
		includingBuried bool,
		buriedFactIDs []uuid.UUID,
	) (int, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller, typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
