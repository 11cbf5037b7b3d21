package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/platform/logger"
	"github.com/studyloop/srs-api/internal/store"
)

// AvailabilityParams are the inputs to one availability evaluation. They are
// immutable once the snapshot is constructed.
type AvailabilityParams struct {
	// User being evaluated. Nil or zero-ID means an anonymous visitor.
	User *domain.User

	// DeckID optionally narrows the evaluation to a single deck.
	DeckID *uuid.UUID

	// ExcludedCardIDs removes cards already committed to the current session.
	ExcludedCardIDs []uuid.UUID

	// BufferedNewCardsCount counts new cards the user is already about to
	// study (e.g. the cards ahead of where these availabilities appear, if on
	// an interstitial). They are treated as if already reviewed.
	BufferedNewCardsCount int

	// NewCardsPerDayLimitOverride optionally replaces the account's daily
	// limit for this evaluation.
	NewCardsPerDayLimitOverride *int

	// TimeZone optionally overrides the user's configured time zone
	// (IANA name).
	TimeZone string

	// Limit optionally supplies a pre-built NewCardsLimit, skipping the
	// learned-today query.
	Limit *NewCardsLimit

	// Now fixes the evaluation instant; zero means the current time.
	Now time.Time
}

// Availabilities is one fully-scoped availability snapshot. Every accessor is
// computed at most once per instance and the result reused, so a single
// decision pass sees consistent answers; errors are returned to the caller
// and never memoized.
//
// An instance belongs to a single goroutine and a single request. It holds no
// locks.
type Availabilities struct {
	cards   CardReader
	facts   FactReader
	history HistoryReader
	logger  *slog.Logger

	user           *domain.User
	anonymous      bool
	now            time.Time
	loc            *time.Location
	startOfDayHour int
	baseFilter     store.CardFilter

	excludedCardIDs []uuid.UUID
	buffered        int
	overrideParam   *int

	limit *NewCardsLimit

	buriedFactIDs         []uuid.UUID
	buriedFactIDsComputed bool

	readyForReview    *bool
	earlyReview       *bool
	nextNewCardsLimit *int
	nextNewCards      *int

	buriedNewCardsComputed bool
	buriedNewCardsValue    int
	buriedNewCardsOK       bool

	overrideComputed bool
	overrideValue    int
	overrideOK       bool

	promptsComputed bool
	primaryPrompt   string
	secondaryPrompt string
}

// Availabilities builds a snapshot for the given parameters. It resolves the
// evaluation instant, time zone and base card scope up front; all storage
// queries are deferred to the first accessor that needs them.
func (e *Evaluator) Availabilities(params AvailabilityParams) (*Availabilities, error) {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	loc := time.UTC
	if params.TimeZone != "" {
		parsed, err := time.LoadLocation(params.TimeZone)
		if err != nil {
			return nil, NewEvaluateError("invalid time zone", domain.ErrInvalidTimeZone)
		}
		loc = parsed
	} else {
		parsed, err := params.User.Location()
		if err != nil {
			return nil, NewEvaluateError("invalid user time zone", err)
		}
		loc = parsed
	}

	anonymous := params.User.IsAnonymous()

	filter := store.CardFilter{}.Available()
	if !anonymous {
		filter = filter.OfUser(params.User.ID)
	}
	if params.DeckID != nil {
		filter = filter.OfDeck(*params.DeckID)
	}
	if len(params.ExcludedCardIDs) > 0 {
		filter = filter.ExcludingIDs(params.ExcludedCardIDs)
	}

	return &Availabilities{
		cards:           e.cards,
		facts:           e.facts,
		history:         e.history,
		logger:          e.logger,
		user:            params.User,
		anonymous:       anonymous,
		now:             now,
		loc:             loc,
		startOfDayHour:  e.startOfDayHour,
		baseFilter:      filter,
		excludedCardIDs: params.ExcludedCardIDs,
		buffered:        params.BufferedNewCardsCount,
		overrideParam:   params.NewCardsPerDayLimitOverride,
		limit:           params.Limit,
	}, nil
}

// newCardsLimit lazily computes the user's daily budget.
func (a *Availabilities) newCardsLimit(ctx context.Context) (NewCardsLimit, error) {
	if a.limit != nil {
		return *a.limit, nil
	}

	limit, err := ComputeNewCardsLimit(
		ctx, a.history, a.user, a.overrideParam, a.buffered,
		a.loc, a.startOfDayHour, a.now)
	if err != nil {
		return NewCardsLimit{}, err
	}

	a.limit = &limit
	return limit, nil
}

// buriedFacts lazily computes the IDs of facts buried for the rest of the
// user's local day. Shared by both new-card counts so they agree on burial.
func (a *Availabilities) buriedFacts(ctx context.Context) ([]uuid.UUID, error) {
	if a.buriedFactIDsComputed {
		return a.buriedFactIDs, nil
	}

	ids, err := a.facts.BuriedFactIDs(ctx, a.user.ID, a.excludedCardIDs, a.now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buried facts: %w", err)
	}

	a.buriedFactIDs = ids
	a.buriedFactIDsComputed = true
	return ids, nil
}

// ReadyForReview reports whether the scoped card set holds at least one card
// due at the evaluation instant. Always false for anonymous users.
func (a *Availabilities) ReadyForReview(ctx context.Context) (bool, error) {
	if a.readyForReview != nil {
		return *a.readyForReview, nil
	}

	if a.anonymous {
		ready := false
		a.readyForReview = &ready
		return false, nil
	}

	ready, err := a.cards.Exists(ctx, a.baseFilter.Due(a.now))
	if err != nil {
		return false, fmt.Errorf("failed to check for due cards: %w", err)
	}

	a.readyForReview = &ready
	return ready, nil
}

// EarlyReviewAvailable reports whether the user may review ahead of schedule:
// no card is due, but at least one card in scope becomes due later. Mutually
// exclusive with ReadyForReview. Always false for anonymous users.
func (a *Availabilities) EarlyReviewAvailable(ctx context.Context) (bool, error) {
	if a.earlyReview != nil {
		return *a.earlyReview, nil
	}

	if a.anonymous {
		early := false
		a.earlyReview = &early
		return false, nil
	}

	ready, err := a.ReadyForReview(ctx)
	if err != nil {
		return false, err
	}
	if ready {
		early := false
		a.earlyReview = &early
		return false, nil
	}

	early, err := a.cards.Exists(ctx, a.baseFilter.DueAfterTime(a.now))
	if err != nil {
		return false, fmt.Errorf("failed to check for future-due cards: %w", err)
	}

	a.earlyReview = &early
	return early, nil
}

// nextLimit is the ceiling applied to the next batch of new cards. Once the
// daily budget is exhausted it drops to the override increment, allowing one
// small additional batch.
func (a *Availabilities) nextLimit(ctx context.Context) (int, error) {
	if a.nextNewCardsLimit != nil {
		return *a.nextNewCardsLimit, nil
	}

	limit, err := a.newCardsLimit(ctx)
	if err != nil {
		return 0, err
	}

	next := limit.NextNewCardsLimit()
	if limit.LimitReached() {
		next = NewCardsLimitOverrideIncrement
	}

	a.nextNewCardsLimit = &next
	return next, nil
}

// NextNewCardsCount returns how many new cards may be shown right now: the
// non-buried new cards in scope, capped by the remaining daily budget less
// the buffered count, clamped to zero. If the user is beyond their daily
// limit, this provides up to the next override limit.
func (a *Availabilities) NextNewCardsCount(ctx context.Context) (int, error) {
	if a.nextNewCards != nil {
		return *a.nextNewCards, nil
	}

	if a.anonymous {
		zero := 0
		a.nextNewCards = &zero
		return 0, nil
	}

	buried, err := a.buriedFacts(ctx)
	if err != nil {
		return 0, err
	}

	available, err := a.cards.NewCount(ctx, a.baseFilter, false, buried)
	if err != nil {
		return 0, fmt.Errorf("failed to count available new cards: %w", err)
	}

	limit, err := a.nextLimit(ctx)
	if err != nil {
		return 0, err
	}

	count := min(available, limit-a.buffered)
	if count < 0 {
		count = 0
	}

	a.nextNewCards = &count
	return count, nil
}

// BuriedNewCardsCount returns how many new cards would be available were
// their facts not buried. Meaningful (ok) only when NextNewCardsCount is
// zero; unspecified for anonymous users.
func (a *Availabilities) BuriedNewCardsCount(ctx context.Context) (int, bool, error) {
	if a.buriedNewCardsComputed {
		return a.buriedNewCardsValue, a.buriedNewCardsOK, nil
	}

	if a.anonymous {
		a.buriedNewCardsComputed = true
		return 0, false, nil
	}

	next, err := a.NextNewCardsCount(ctx)
	if err != nil {
		return 0, false, err
	}
	if next > 0 {
		a.buriedNewCardsComputed = true
		return 0, false, nil
	}

	available, err := a.cards.NewCount(ctx, a.baseFilter, true, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to count buried new cards: %w", err)
	}

	limit, err := a.nextLimit(ctx)
	if err != nil {
		return 0, false, err
	}

	count := min(available, limit-a.buffered)
	if count < 0 {
		count = 0
	}

	a.buriedNewCardsComputed = true
	a.buriedNewCardsValue = count
	a.buriedNewCardsOK = true
	return count, true, nil
}

// NewCardsPerDayLimitOverride returns the raised daily limit the user could
// adopt to unlock more new cards immediately. Unspecified while the daily
// limit has not been reached, and suppressed when there is nothing at all
// left to unlock.
func (a *Availabilities) NewCardsPerDayLimitOverride(ctx context.Context) (int, bool, error) {
	if a.overrideComputed {
		return a.overrideValue, a.overrideOK, nil
	}

	if a.anonymous {
		a.overrideComputed = true
		return 0, false, nil
	}

	limit, err := a.newCardsLimit(ctx)
	if err != nil {
		return 0, false, err
	}
	if !limit.LimitReached() {
		a.overrideComputed = true
		return 0, false, nil
	}

	next, err := a.NextNewCardsCount(ctx)
	if err != nil {
		return 0, false, err
	}
	buriedCount, buriedOK, err := a.BuriedNewCardsCount(ctx)
	if err != nil {
		return 0, false, err
	}

	if next == 0 && (!buriedOK || buriedCount == 0) {
		anyNew, err := a.cards.Exists(ctx, a.baseFilter.New())
		if err != nil {
			return 0, false, fmt.Errorf("failed to check for new cards: %w", err)
		}
		if !anyNew {
			a.overrideComputed = true
			return 0, false, nil
		}
	}

	a.overrideComputed = true
	a.overrideValue = limit.LearnedTodayCount + NewCardsLimitOverrideIncrement
	a.overrideOK = true
	return a.overrideValue, true, nil
}

// InvalidatedUponCardFailure indicates that this snapshot ought to be
// discarded and recomputed as soon as the user fails any review, since a
// failure can surface newly-due cards or change burial state.
func (a *Availabilities) InvalidatedUponCardFailure() bool {
	return true
}

// prompts resolves the snapshot state and renders both prompts once.
// Anonymous users get empty prompts without touching storage.
func (a *Availabilities) prompts(ctx context.Context) (string, string, error) {
	if a.promptsComputed {
		return a.primaryPrompt, a.secondaryPrompt, nil
	}

	if a.anonymous {
		a.promptsComputed = true
		return "", "", nil
	}

	state, err := a.promptState(ctx)
	if err != nil {
		return "", "", err
	}

	primary, secondary := availabilityPrompts(state)

	a.promptsComputed = true
	a.primaryPrompt = primary
	a.secondaryPrompt = secondary
	return primary, secondary, nil
}

// promptState gathers the resolved decisions the prompt generator needs.
func (a *Availabilities) promptState(ctx context.Context) (promptState, error) {
	ready, err := a.ReadyForReview(ctx)
	if err != nil {
		return promptState{}, err
	}
	early, err := a.EarlyReviewAvailable(ctx)
	if err != nil {
		return promptState{}, err
	}
	next, err := a.NextNewCardsCount(ctx)
	if err != nil {
		return promptState{}, err
	}
	buriedCount, buriedOK, err := a.BuriedNewCardsCount(ctx)
	if err != nil {
		return promptState{}, err
	}
	limit, err := a.newCardsLimit(ctx)
	if err != nil {
		return promptState{}, err
	}
	_, overrideOK, err := a.NewCardsPerDayLimitOverride(ctx)
	if err != nil {
		return promptState{}, err
	}

	return promptState{
		ReadyForReview:       ready,
		EarlyReviewAvailable: early,
		NextNewCardsCount:    next,
		BuriedNewCardsCount:  buriedCount,
		BuriedNewCardsKnown:  buriedOK,
		LimitReached:         limit.LimitReached(),
		OverrideAvailable:    overrideOK,
	}, nil
}

// PrimaryPrompt returns the headline status text for the snapshot.
func (a *Availabilities) PrimaryPrompt(ctx context.Context) (string, error) {
	primary, _, err := a.prompts(ctx)
	return primary, err
}

// SecondaryPrompt returns the supporting status text for the snapshot.
func (a *Availabilities) SecondaryPrompt(ctx context.Context) (string, error) {
	_, secondary, err := a.prompts(ctx)
	return secondary, err
}

// Snapshot is the fully-materialized form of one evaluation, shaped for
// serialization at the API edge. Nil pointers stand for unspecified values.
type Snapshot struct {
	ReadyForReview              bool   `json:"ready_for_review"`
	EarlyReviewAvailable        bool   `json:"early_review_available"`
	NextNewCardsCount           int    `json:"next_new_cards_count"`
	BuriedNewCardsCount         *int   `json:"buried_new_cards_count"`
	NewCardsPerDayLimitOverride *int   `json:"new_cards_per_day_limit_override"`
	InvalidatedUponCardFailure  bool   `json:"invalidated_upon_card_failure"`
	PrimaryPrompt               string `json:"primary_prompt"`
	SecondaryPrompt             string `json:"secondary_prompt"`
}

// Resolve materializes every decision into a Snapshot. Accessors keep their
// memoized results, so resolving after partial access is consistent and
// cheap.
func (a *Availabilities) Resolve(ctx context.Context) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	ready, err := a.ReadyForReview(ctx)
	if err != nil {
		return nil, NewEvaluateError("failed to resolve due-review readiness", err)
	}
	early, err := a.EarlyReviewAvailable(ctx)
	if err != nil {
		return nil, NewEvaluateError("failed to resolve early-review availability", err)
	}
	next, err := a.NextNewCardsCount(ctx)
	if err != nil {
		return nil, NewEvaluateError("failed to resolve next new cards count", err)
	}

	snapshot := &Snapshot{
		ReadyForReview:             ready,
		EarlyReviewAvailable:       early,
		NextNewCardsCount:          next,
		InvalidatedUponCardFailure: a.InvalidatedUponCardFailure(),
	}

	if buried, ok, err := a.BuriedNewCardsCount(ctx); err != nil {
		return nil, NewEvaluateError("failed to resolve buried new cards count", err)
	} else if ok {
		snapshot.BuriedNewCardsCount = &buried
	}

	if override, ok, err := a.NewCardsPerDayLimitOverride(ctx); err != nil {
		return nil, NewEvaluateError("failed to resolve daily limit override", err)
	} else if ok {
		snapshot.NewCardsPerDayLimitOverride = &override
	}

	primary, secondary, err := a.prompts(ctx)
	if err != nil {
		return nil, NewEvaluateError("failed to render prompts", err)
	}
	snapshot.PrimaryPrompt = primary
	snapshot.SecondaryPrompt = secondary

	if !a.anonymous {
		log.Debug("resolved review availabilities",
			slog.String("user_id", a.user.ID.String()),
			slog.Bool("ready_for_review", ready),
			slog.Bool("early_review_available", early),
			slog.Int("next_new_cards_count", next))
	}

	return snapshot, nil
}
