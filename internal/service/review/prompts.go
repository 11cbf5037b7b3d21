package review

import "fmt"

// promptState is the resolved decision state the prompt generator consumes.
// It carries no collaborators, keeping the generator a pure function.
type promptState struct {
	ReadyForReview       bool
	EarlyReviewAvailable bool
	NextNewCardsCount    int
	BuriedNewCardsCount  int
	BuriedNewCardsKnown  bool
	LimitReached         bool
	OverrideAvailable    bool
}

// availabilityPrompts renders the primary and secondary status text for one
// resolved snapshot. Due reviews take priority over new cards, which take
// priority over the limit-reached and early-review states.
func availabilityPrompts(state promptState) (string, string) {
	switch {
	case state.ReadyForReview:
		return "Review time!",
			"Your cards are ready for you."

	case state.NextNewCardsCount > 0:
		if state.LimitReached {
			return "Keep going?",
				fmt.Sprintf("You can learn %d more new %s beyond today's goal.",
					state.NextNewCardsCount, pluralCards(state.NextNewCardsCount))
		}
		return "Learn something new",
			fmt.Sprintf("You have %d new %s waiting.",
				state.NextNewCardsCount, pluralCards(state.NextNewCardsCount))

	case state.LimitReached && state.OverrideAvailable:
		return "Daily goal reached",
			"Raise today's limit to keep learning new cards."

	case state.BuriedNewCardsKnown && state.BuriedNewCardsCount > 0:
		return "All set for today",
			"More new cards will surface tomorrow."

	case state.EarlyReviewAvailable:
		return "Nothing due yet",
			"You can review ahead of schedule if you like."

	default:
		return "All caught up!",
			"Check back later for more reviews."
	}
}

func pluralCards(n int) string {
	if n == 1 {
		return "card"
	}
	return "cards"
}
