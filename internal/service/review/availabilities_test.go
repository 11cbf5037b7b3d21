package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/domain/timeutil"
	"github.com/studyloop/srs-api/internal/store"
)

var evalTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testUser(dailyLimit int) *domain.User {
	return &domain.User{
		ID:                  uuid.New(),
		Email:               "reviewer@example.com",
		NewCardsPerDayLimit: dailyLimit,
	}
}

func testEvaluator(
	cards *mockCardReader,
	facts *mockFactReader,
	history *mockHistoryReader,
) *Evaluator {
	return NewEvaluator(cards, facts, history, timeutil.DefaultStartOfDayHour, nil)
}

func expectLearnedToday(history *mockHistoryReader, user *domain.User, learned int) {
	history.On("CountFirstLearnedBetween", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return(learned, nil)
}

func expectNoBuriedFacts(facts *mockFactReader, user *domain.User) {
	facts.On("BuriedFactIDs", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return(nil, nil)
}

// No due cards but future-due cards exist: early review is offered and the
// full daily budget of new cards is available.
func TestAvailabilities_EarlyReviewWhenNothingDue(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("Exists", mock.Anything, dueFilter()).Return(false, nil)
	cards.On("Exists", mock.Anything, futureDueFilter()).Return(true, nil)
	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(7, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 0)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	ready, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)
	assert.False(t, ready)

	early, err := avail.EarlyReviewAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, early)

	next, err := avail.NextNewCardsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, next)

	cards.AssertExpectations(t)
}

// Due cards exist: ready for review, and early review is suppressed without
// even querying for future-due cards.
func TestAvailabilities_ReadySuppressesEarlyReview(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("Exists", mock.Anything, dueFilter()).Return(true, nil)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	ready, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	early, err := avail.EarlyReviewAvailable(ctx)
	require.NoError(t, err)
	assert.False(t, early)

	// Exactly one of ready/early may be true, and the future-due query must
	// never have run.
	assert.False(t, ready && early)
	cards.AssertNumberOfCalls(t, "Exists", 1)
}

// Daily limit exhausted: a small additional batch is offered, capped by the
// override increment, and the adoptable raised limit is learned + increment.
func TestAvailabilities_LimitReachedOffersOverrideBatch(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(5, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 20)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	next, err := avail.NextNewCardsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, next)

	// Buried count is meaningless while new cards remain.
	_, ok, err := avail.BuriedNewCardsCount(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	override, ok, err := avail.NewCardsPerDayLimitOverride(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30, override)
}

// Daily limit reached and no new cards exist anywhere in scope: nothing to
// unlock, so no override is offered.
func TestAvailabilities_OverrideSuppressedWhenNothingToUnlock(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(0, nil)
	cards.On("NewCount", mock.Anything, baseScopeFilter(), true, mock.Anything).
		Return(0, nil)
	cards.On("Exists", mock.Anything, newCardsFilter()).Return(false, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 20)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	next, err := avail.NextNewCardsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	buried, ok, err := avail.BuriedNewCardsCount(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, buried)

	_, ok, err = avail.NewCardsPerDayLimitOverride(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	cards.AssertExpectations(t)
}

// Buffered cards eat into the remaining budget before new cards are offered.
func TestAvailabilities_BufferedCardsReduceBudget(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(5, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 17)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{
			User:                  user,
			BufferedNewCardsCount: 2,
			Now:                   evalTime,
		})
	require.NoError(t, err)

	// Remaining budget is 3, of which 2 are already buffered.
	next, err := avail.NextNewCardsCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

// A buffer larger than the remaining budget clamps to zero rather than going
// negative.
func TestAvailabilities_NegativeBudgetClampsToZero(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(9, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 0)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{
			User:                  user,
			BufferedNewCardsCount: 25,
			Now:                   evalTime,
		})
	require.NoError(t, err)

	next, err := avail.NextNewCardsCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

// All new cards in scope are buried: the buried count reports what tomorrow
// will unlock.
func TestAvailabilities_BuriedNewCardsReported(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)
	buriedFacts := []uuid.UUID{uuid.New(), uuid.New()}

	facts.On("BuriedFactIDs", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return(buriedFacts, nil)
	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, buriedFacts).
		Return(0, nil)
	cards.On("NewCount", mock.Anything, baseScopeFilter(), true, mock.Anything).
		Return(4, nil)
	expectLearnedToday(history, user, 0)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	next, err := avail.NextNewCardsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	buried, ok, err := avail.BuriedNewCardsCount(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, buried)

	cards.AssertExpectations(t)
}

// Anonymous visitors get the all-false snapshot without any storage queries.
func TestAvailabilities_Anonymous(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: nil, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	ready, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)
	assert.False(t, ready)

	early, err := avail.EarlyReviewAvailable(ctx)
	require.NoError(t, err)
	assert.False(t, early)

	next, err := avail.NextNewCardsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	_, ok, err := avail.BuriedNewCardsCount(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = avail.NewCardsPerDayLimitOverride(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	primary, err := avail.PrimaryPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", primary)

	secondary, err := avail.SecondaryPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", secondary)

	assert.True(t, avail.InvalidatedUponCardFailure())

	cards.AssertExpectations(t)
	facts.AssertExpectations(t)
	history.AssertExpectations(t)
}

// Each accessor queries at most once per instance; repeated access reuses the
// memoized result even though the store could answer differently by then.
func TestAvailabilities_MemoizesResults(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("Exists", mock.Anything, dueFilter()).Return(true, nil).Once()

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	first, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)
	second, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	cards.AssertNumberOfCalls(t, "Exists", 1)
}

// Failures are returned, not cached: the next access retries the query.
func TestAvailabilities_ErrorsNotMemoized(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	storeErr := errors.New("connection refused")
	cards.On("Exists", mock.Anything, dueFilter()).Return(false, storeErr).Once()
	cards.On("Exists", mock.Anything, dueFilter()).Return(true, nil).Once()

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = avail.ReadyForReview(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	ready, err := avail.ReadyForReview(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	cards.AssertExpectations(t)
}

// The deck and excluded-card scope reaches every query unchanged.
func TestAvailabilities_ScopePropagates(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)
	deckID := uuid.New()
	excluded := []uuid.UUID{uuid.New()}

	scoped := mock.MatchedBy(func(f store.CardFilter) bool {
		return f.AvailableOnly &&
			f.UserID != nil && *f.UserID == user.ID &&
			f.DeckID != nil && *f.DeckID == deckID &&
			len(f.ExcludedIDs) == 1 && f.ExcludedIDs[0] == excluded[0] &&
			f.DueAtOrBefore != nil
	})
	cards.On("Exists", mock.Anything, scoped).Return(true, nil)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{
			User:            user,
			DeckID:          &deckID,
			ExcludedCardIDs: excluded,
			Now:             evalTime,
		})
	require.NoError(t, err)

	ready, err := avail.ReadyForReview(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)

	cards.AssertExpectations(t)
}

// A caller-supplied override replaces the account limit for this evaluation.
func TestAvailabilities_OverrideParamRaisesLimit(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)
	override := 40

	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(50, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 20)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{
			User:                        user,
			NewCardsPerDayLimitOverride: &override,
			Now:                         evalTime,
		})
	require.NoError(t, err)

	// 20 learned against a raised limit of 40 leaves room for 20 more.
	next, err := avail.NextNewCardsCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, next)

	_, ok, err := avail.NewCardsPerDayLimitOverride(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

// An invalid user time zone fails construction loudly.
func TestAvailabilities_InvalidTimeZone(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)
	user.TimeZone = "Mars/Olympus_Mons"

	_, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeZone)

	var svcErr *ServiceError
	assert.ErrorAs(t, err, &svcErr)
}

// Resolve materializes the whole snapshot, with optionals as nil pointers.
func TestAvailabilities_Resolve(t *testing.T) {
	cards := new(mockCardReader)
	facts := new(mockFactReader)
	history := new(mockHistoryReader)
	user := testUser(20)

	cards.On("Exists", mock.Anything, dueFilter()).Return(false, nil)
	cards.On("Exists", mock.Anything, futureDueFilter()).Return(true, nil)
	cards.On("NewCount", mock.Anything, baseScopeFilter(), false, mock.Anything).
		Return(3, nil)
	expectNoBuriedFacts(facts, user)
	expectLearnedToday(history, user, 0)

	avail, err := testEvaluator(cards, facts, history).
		Availabilities(AvailabilityParams{User: user, Now: evalTime})
	require.NoError(t, err)

	snapshot, err := avail.Resolve(context.Background())
	require.NoError(t, err)

	assert.False(t, snapshot.ReadyForReview)
	assert.True(t, snapshot.EarlyReviewAvailable)
	assert.Equal(t, 3, snapshot.NextNewCardsCount)
	assert.Nil(t, snapshot.BuriedNewCardsCount)
	assert.Nil(t, snapshot.NewCardsPerDayLimitOverride)
	assert.True(t, snapshot.InvalidatedUponCardFailure)
	assert.NotEmpty(t, snapshot.PrimaryPrompt)
	assert.NotEmpty(t, snapshot.SecondaryPrompt)
}
