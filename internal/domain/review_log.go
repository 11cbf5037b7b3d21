package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewGrade represents the user's self-assessment of a review.
type ReviewGrade string

// Possible review grade values
const (
	ReviewGradeFailed ReviewGrade = "failed"
	ReviewGradeHard   ReviewGrade = "hard"
	ReviewGradeGood   ReviewGrade = "good"
	ReviewGradeEasy   ReviewGrade = "easy"
)

// Common validation errors for ReviewLog
var (
	ErrEmptyReviewLogID     = errors.New("review log ID cannot be empty")
	ErrEmptyReviewLogUserID = errors.New("review log user ID cannot be empty")
	ErrEmptyReviewLogCardID = errors.New("review log card ID cannot be empty")
	ErrZeroReviewedAt       = errors.New("review log reviewed-at timestamp cannot be zero")
	ErrInvalidReviewGrade   = errors.New("invalid review grade")
)

// ReviewLog records one completed review of a card. FirstLearned marks the
// review that graduated the card out of the "new" state; the daily new-card
// limit counts these within the user's current local day.
type ReviewLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	CardID       uuid.UUID   `json:"card_id"`
	Grade        ReviewGrade `json:"grade"`
	FirstLearned bool        `json:"first_learned"`
	ReviewedAt   time.Time   `json:"reviewed_at"`
}

// NewReviewLog creates a review log entry for the given card and grade.
// Returns an error if validation fails.
func NewReviewLog(
	userID, cardID uuid.UUID,
	grade ReviewGrade,
	firstLearned bool,
	reviewedAt time.Time,
) (*ReviewLog, error) {
	log := &ReviewLog{
		ID:           uuid.New(),
		UserID:       userID,
		CardID:       cardID,
		Grade:        grade,
		FirstLearned: firstLearned,
		ReviewedAt:   reviewedAt,
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}

	return log, nil
}

// Validate checks if the ReviewLog has valid data.
// Returns an error if any field fails validation.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyReviewLogID
	}

	if l.UserID == uuid.Nil {
		return ErrEmptyReviewLogUserID
	}

	if l.CardID == uuid.Nil {
		return ErrEmptyReviewLogCardID
	}

	if l.ReviewedAt.IsZero() {
		return ErrZeroReviewedAt
	}

	switch l.Grade {
	case ReviewGradeFailed, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy:
	default:
		return ErrInvalidReviewGrade
	}

	return nil
}
