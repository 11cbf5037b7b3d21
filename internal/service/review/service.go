package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/store"
)

// CardReader is the card-collection query surface the availability layer
// consumes. Satisfied by store.CardStore.
type CardReader interface {
	// Exists reports whether at least one card matches the filter, without
	// materializing rows.
	Exists(ctx context.Context, filter store.CardFilter) (bool, error)

	// Count returns the number of cards matching the filter.
	Count(ctx context.Context, filter store.CardFilter) (int, error)

	// NewCount returns the number of never-reviewed cards matching the
	// filter, excluding cards of buriedFactIDs unless includingBuried is set.
	NewCount(
		ctx context.Context,
		filter store.CardFilter,
		includingBuried bool,
		buriedFactIDs []uuid.UUID,
	) (int, error)
}

// FactReader is the fact-collection query surface the availability layer
// consumes. Satisfied by store.FactStore.
type FactReader interface {
	// BuriedFactIDs returns the IDs of the user's facts buried at the given
	// instant, ignoring facts fully covered by excludedCardIDs.
	BuriedFactIDs(
		ctx context.Context,
		userID uuid.UUID,
		excludedCardIDs []uuid.UUID,
		now time.Time,
	) ([]uuid.UUID, error)
}

// HistoryReader is the review-history query surface the availability layer
// consumes. Satisfied by store.ReviewLogStore.
type HistoryReader interface {
	// CountFirstLearnedBetween returns the number of cards the user first
	// learned within [from, to).
	CountFirstLearnedBetween(
		ctx context.Context,
		userID uuid.UUID,
		from, to time.Time,
	) (int, error)
}

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "evaluate_availabilities")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewEvaluateError returns a new ServiceError for the evaluate_availabilities
// operation.
func NewEvaluateError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "evaluate_availabilities",
		Message:   message,
		Err:       err,
	}
}

// Evaluator constructs Availabilities snapshots. It carries the query
// collaborators and the configured start-of-day hour; one Evaluator serves
// many requests, each producing its own snapshot.
type Evaluator struct {
	cards          CardReader
	facts          FactReader
	history        HistoryReader
	startOfDayHour int
	logger         *slog.Logger
}

// NewEvaluator creates an Evaluator over the given query collaborators.
// startOfDayHour is the hour (0-23) at which a user's local day begins.
func NewEvaluator(
	cards CardReader,
	facts FactReader,
	history HistoryReader,
	startOfDayHour int,
	logger *slog.Logger,
) *Evaluator {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if facts == nil {
		panic("facts cannot be nil")
	}
	if history == nil {
		panic("history cannot be nil")
	}
	if startOfDayHour < 0 || startOfDayHour > 23 {
		panic("startOfDayHour must be within 0-23")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		cards:          cards,
		facts:          facts,
		history:        history,
		startOfDayHour: startOfDayHour,
		logger:         logger.With(slog.String("component", "review_evaluator")),
	}
}
