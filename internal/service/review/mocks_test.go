package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/studyloop/srs-api/internal/store"
)

// mockCardReader is a mock implementation of CardReader
type mockCardReader struct {
	mock.Mock
}

func (m *mockCardReader) Exists(ctx context.Context, filter store.CardFilter) (bool, error) {
	args := m.Called(ctx, filter)
	return args.Bool(0), args.Error(1)
}

func (m *mockCardReader) Count(ctx context.Context, filter store.CardFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *mockCardReader) NewCount(
	ctx context.Context,
	filter store.CardFilter,
	includingBuried bool,
	buriedFactIDs []uuid.UUID,
) (int, error) {
	args := m.Called(ctx, filter, includingBuried, buriedFactIDs)
	return args.Int(0), args.Error(1)
}

// mockFactReader is a mock implementation of FactReader
type mockFactReader struct {
	mock.Mock
}

func (m *mockFactReader) BuriedFactIDs(
	ctx context.Context,
	userID uuid.UUID,
	excludedCardIDs []uuid.UUID,
	now time.Time,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, excludedCardIDs, now)
	var ids []uuid.UUID
	if v := args.Get(0); v != nil {
		ids = v.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

// mockHistoryReader is a mock implementation of HistoryReader
type mockHistoryReader struct {
	mock.Mock
}

func (m *mockHistoryReader) CountFirstLearnedBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

// Filter matchers shared across tests. The availability layer narrows one
// base filter per query; these pick the query out by its distinguishing
// constraint.

func dueFilter() interface{} {
	return mock.MatchedBy(func(f store.CardFilter) bool {
		return f.DueAtOrBefore != nil && f.DueAfter == nil
	})
}

func futureDueFilter() interface{} {
	return mock.MatchedBy(func(f store.CardFilter) bool {
		return f.DueAfter != nil && f.DueAtOrBefore == nil
	})
}

func newCardsFilter() interface{} {
	return mock.MatchedBy(func(f store.CardFilter) bool {
		return f.NewOnly
	})
}

func baseScopeFilter() interface{} {
	return mock.MatchedBy(func(f store.CardFilter) bool {
		return !f.NewOnly && f.DueAtOrBefore == nil && f.DueAfter == nil
	})
}
