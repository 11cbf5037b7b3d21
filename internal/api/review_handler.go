package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/studyloop/srs-api/internal/api/shared"
	"github.com/studyloop/srs-api/internal/domain"
	"github.com/studyloop/srs-api/internal/platform/logger"
	"github.com/studyloop/srs-api/internal/service/review"
	"github.com/studyloop/srs-api/internal/store"
)

// UserGetter resolves users for availability evaluation. Satisfied by
// store.UserStore.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ReviewHandler handles review availability HTTP requests
type ReviewHandler struct {
	evaluator *review.Evaluator
	users     UserGetter
	logger    *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	evaluator *review.Evaluator,
	users UserGetter,
	logger *slog.Logger,
) *ReviewHandler {
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewHandler{
		evaluator: evaluator,
		users:     users,
		logger:    logger.With(slog.String("component", "review_handler")),
	}
}

// GetAvailabilities handles GET /api/review/availabilities requests.
// A missing, malformed or unknown user_id yields the anonymous snapshot
// rather than an error; the page renders for logged-out visitors too.
func (h *ReviewHandler) GetAvailabilities(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	q := r.URL.Query()

	params := review.AvailabilityParams{}

	if raw := q.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			log.Debug("malformed user_id, evaluating as anonymous",
				slog.String("user_id", raw))
		} else {
			user, err := h.users.GetByID(r.Context(), userID)
			switch {
			case err == nil:
				params.User = user
			case errors.Is(err, store.ErrUserNotFound):
				log.Debug("unknown user_id, evaluating as anonymous",
					slog.String("user_id", raw))
			default:
				shared.RespondWithErrorAndLog(w, r,
					http.StatusInternalServerError, "Failed to resolve user", err)
				return
			}
		}
	}

	if raw := q.Get("deck_id"); raw != "" {
		deckID, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("invalid deck_id", slog.String("deck_id", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
			return
		}
		params.DeckID = &deckID
	}

	if raw := q.Get("excluded_card_ids"); raw != "" {
		ids, err := parseUUIDList(raw)
		if err != nil {
			log.Warn("invalid excluded_card_ids", slog.String("value", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid excluded card IDs")
			return
		}
		params.ExcludedCardIDs = ids
	}

	if raw := q.Get("buffered_new_cards_count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			log.Warn("invalid buffered_new_cards_count", slog.String("value", raw))
			shared.RespondWithError(w, r,
				http.StatusBadRequest, "Invalid buffered new cards count")
			return
		}
		params.BufferedNewCardsCount = count
	}

	if raw := q.Get("new_cards_per_day_limit_override"); raw != "" {
		override, err := strconv.Atoi(raw)
		if err != nil || override < 0 {
			log.Warn("invalid new_cards_per_day_limit_override", slog.String("value", raw))
			shared.RespondWithError(w, r,
				http.StatusBadRequest, "Invalid daily limit override")
			return
		}
		params.NewCardsPerDayLimitOverride = &override
	}

	// Overrides the user's stored zone; validated by the evaluator.
	params.TimeZone = q.Get("time_zone")

	avail, err := h.evaluator.Availabilities(params)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	snapshot, err := avail.Resolve(r.Context())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to evaluate review availabilities"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot))
}

// parseUUIDList parses a comma-separated list of UUIDs.
func parseUUIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
