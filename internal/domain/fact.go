package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Fact
var (
	ErrEmptyFactID         = errors.New("fact ID cannot be empty")
	ErrEmptyFactUserID     = errors.New("fact user ID cannot be empty")
	ErrEmptyFactDeckID     = errors.New("fact deck ID cannot be empty")
	ErrEmptyFactExpression = errors.New("fact expression cannot be empty")
)

// Fact represents the content unit that cards quiz on: an expression, its
// reading, and its meaning. Burying a fact suppresses all of its sibling
// cards from new-card selection until the burial expires (normally the next
// local day), which prevents several cards of the same fact from being
// introduced in one session.
type Fact struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	DeckID      uuid.UUID  `json:"deck_id"`
	Expression  string     `json:"expression"`
	Reading     string     `json:"reading,omitempty"`
	Meaning     string     `json:"meaning"`
	BuriedUntil *time.Time `json:"buried_until,omitempty"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewFact creates a new Fact with the given content.
// It generates a new UUID for the fact ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewFact(userID, deckID uuid.UUID, expression, reading, meaning string) (*Fact, error) {
	now := time.Now().UTC()
	fact := &Fact{
		ID:         uuid.New(),
		UserID:     userID,
		DeckID:     deckID,
		Expression: expression,
		Reading:    reading,
		Meaning:    meaning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := fact.Validate(); err != nil {
		return nil, err
	}

	return fact, nil
}

// IsBuried reports whether the fact is buried at the given instant.
func (f *Fact) IsBuried(now time.Time) bool {
	return f.BuriedUntil != nil && now.Before(*f.BuriedUntil)
}

// Validate checks if the Fact has valid data.
// Returns an error if any field fails validation.
func (f *Fact) Validate() error {
	if f.ID == uuid.Nil {
		return ErrEmptyFactID
	}

	if f.UserID == uuid.Nil {
		return ErrEmptyFactUserID
	}

	if f.DeckID == uuid.Nil {
		return ErrEmptyFactDeckID
	}

	if f.Expression == "" {
		return ErrEmptyFactExpression
	}

	return nil
}
