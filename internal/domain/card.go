package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFactIDEmpty is returned when a card's fact ID is empty or nil.
	ErrCardFactIDEmpty = errors.New("card fact ID cannot be empty")

	// ErrCardDueAtZero is returned when a card's due timestamp is unset.
	ErrCardDueAtZero = errors.New("card due timestamp cannot be zero")
)

// CardTemplate identifies which side/form of a fact a card quizzes on.
type CardTemplate string

// Possible card template values
const (
	CardTemplateRecognition CardTemplate = "recognition"
	CardTemplateProduction  CardTemplate = "production"
	CardTemplateKanji       CardTemplate = "kanji"
)

// Card represents a single reviewable item generated from a fact.
// A fact typically produces several sibling cards, one per template.
//
// A card is "new" while it has never been successfully reviewed, "due" once
// its scheduled timestamp has passed, and "active" unless it has been
// suspended by the user or the deck was deactivated.
type Card struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"user_id"`
	DeckID         uuid.UUID    `json:"deck_id"`
	FactID         uuid.UUID    `json:"fact_id"`
	Template       CardTemplate `json:"template"`
	DueAt          time.Time    `json:"due_at"`
	LastReviewedAt time.Time    `json:"last_reviewed_at"` // zero means never reviewed
	SuspendedAt    *time.Time   `json:"suspended_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewCard creates a new Card for the given fact, due immediately.
// It generates a new UUID for the card ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCard(userID, deckID, factID uuid.UUID, template CardTemplate) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		DeckID:    deckID,
		FactID:    factID,
		Template:  template,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// IsNew reports whether the card has never been successfully reviewed.
func (c *Card) IsNew() bool {
	return c.LastReviewedAt.IsZero()
}

// IsDue reports whether the card's scheduled review timestamp is at or
// before the given instant.
func (c *Card) IsDue(now time.Time) bool {
	return !c.DueAt.After(now)
}

// IsActive reports whether the card is available for study (not suspended).
func (c *Card) IsActive() bool {
	return c.SuspendedAt == nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.FactID == uuid.Nil {
		return ErrCardFactIDEmpty
	}

	if c.DueAt.IsZero() {
		return ErrCardDueAtZero
	}

	return nil
}
