package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Deck
var (
	ErrEmptyDeckID     = errors.New("deck ID cannot be empty")
	ErrEmptyDeckUserID = errors.New("deck user ID cannot be empty")
	ErrEmptyDeckName   = errors.New("deck name cannot be empty")
)

// Deck groups a user's facts and cards under a single study scope.
// Review availability can be evaluated for one deck or across all decks.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a new Deck with the given name.
// It generates a new UUID for the deck ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewDeck(userID uuid.UUID, name, description string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDeckUserID
	}

	if d.Name == "" {
		return ErrEmptyDeckName
	}

	return nil
}
