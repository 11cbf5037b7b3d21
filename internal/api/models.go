package api

import (
	"github.com/studyloop/srs-api/internal/service/review"
)

// AvailabilitiesResponse is the wire shape of one review availability
// snapshot. The two optional counts serialize as JSON null when unspecified.
type AvailabilitiesResponse struct {
	ReadyForReview              bool   `json:"ready_for_review"`
	EarlyReviewAvailable        bool   `json:"early_review_available"`
	NextNewCardsCount           int    `json:"next_new_cards_count"`
	BuriedNewCardsCount         *int   `json:"buried_new_cards_count"`
	NewCardsPerDayLimitOverride *int   `json:"new_cards_per_day_limit_override"`
	InvalidatedUponCardFailure  bool   `json:"invalidated_upon_card_failure"`
	PrimaryPrompt               string `json:"primary_prompt"`
	SecondaryPrompt             string `json:"secondary_prompt"`
}

// snapshotToResponse converts a resolved review.Snapshot to the wire shape.
func snapshotToResponse(snapshot *review.Snapshot) AvailabilitiesResponse {
	return AvailabilitiesResponse{
		ReadyForReview:              snapshot.ReadyForReview,
		EarlyReviewAvailable:        snapshot.EarlyReviewAvailable,
		NextNewCardsCount:           snapshot.NextNewCardsCount,
		BuriedNewCardsCount:         snapshot.BuriedNewCardsCount,
		NewCardsPerDayLimitOverride: snapshot.NewCardsPerDayLimitOverride,
		InvalidatedUponCardFailure:  snapshot.InvalidatedUponCardFailure,
		PrimaryPrompt:               snapshot.PrimaryPrompt,
		SecondaryPrompt:             snapshot.SecondaryPrompt,
	}
}
