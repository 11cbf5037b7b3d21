package review

import (
	"context"
	"fmt"
	"time"

	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/domain/timeutil"
)

// NewCardsLimitOverrideIncrement is the fixed step added to a user's
// learned-today count to produce a temporarily raised daily limit when they
// choose to keep studying past it.
const NewCardsLimitOverrideIncrement = 10

// NewCardsLimit captures a user's daily new-card budget at one instant.
// It is recomputed per evaluation and never persisted.
type NewCardsLimit struct {
	// LearnedTodayCount is the number of cards the user first learned since
	// the start of their current local day.
	LearnedTodayCount int

	// BufferedNewCardsCount counts new cards already committed to the current
	// session but not yet persisted as learned. They are treated as if
	// already reviewed.
	BufferedNewCardsCount int

	// EffectiveLimit is the daily limit in force: the caller-supplied
	// override when present, else the account's configured limit.
	EffectiveLimit int
}

// LimitReached reports whether the user has exhausted today's new-card budget,
// counting buffered cards as already learned.
func (l NewCardsLimit) LimitReached() bool {
	return l.LearnedTodayCount+l.BufferedNewCardsCount >= l.EffectiveLimit
}

// NextNewCardsLimit returns the limit to apply to the next batch of new
// cards. When today's budget is exhausted it is the raised limit the user
// could adopt (learned count plus the override increment); otherwise it is
// the room remaining under the effective limit.
func (l NewCardsLimit) NextNewCardsLimit() int {
	if l.LimitReached() {
		return l.LearnedTodayCount + NewCardsLimitOverrideIncrement
	}
	return l.EffectiveLimit - l.LearnedTodayCount
}

// ComputeNewCardsLimit builds a NewCardsLimit for the user at the given
// instant. The learned-today count is taken over [local day start, now) in
// loc, where the day starts at startOfDayHour rather than midnight.
//
// Anonymous users never accrue a learned count; callers short-circuit them
// before reaching this function.
func ComputeNewCardsLimit(
	ctx context.Context,
	history HistoryReader,
	user *domain.User,
	override *int,
	bufferedNewCardsCount int,
	loc *time.Location,
	startOfDayHour int,
	now time.Time,
) (NewCardsLimit, error) {
	dayStart := timeutil.LocalDayStart(now, loc, startOfDayHour)

	learned, err := history.CountFirstLearnedBetween(ctx, user.ID, dayStart, now)
	if err != nil {
		return NewCardsLimit{}, fmt.Errorf("failed to count cards learned today: %w", err)
	}

	effective := user.NewCardsPerDayLimit
	if override != nil {
		effective = *override
	}

	return NewCardsLimit{
		LearnedTodayCount:     learned,
		BufferedNewCardsCount: bufferedNewCardsCount,
		EffectiveLimit:        effective,
	}, nil
}
