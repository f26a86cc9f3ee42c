package agent

import (
	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
	"moviesalon/backend/internal/tools"
)

// ToolSpec describes the lookup a speaker performs on one turn
type ToolSpec struct {
	Kind  tools.Kind
	Limit int
	// Trend switches the speaker to the prompt that frames results as current trends
	Trend bool
}

// ToolPlan maps a turn index to the lookup performed before the speaker talks.
// Turns without an entry perform no lookup.
type ToolPlan map[int]ToolSpec

// DefaultToolPlan returns the standard lookup schedule
func DefaultToolPlan() ToolPlan {
	return ToolPlan{
		1: {Kind: tools.KindWebSearch},
		2: {Kind: tools.KindNowShowing, Limit: 10, Trend: true},
		3: {Kind: tools.KindComingSoon, Limit: 10, Trend: true},
		4: {Kind: tools.KindGenreCatalogue, Limit: 10, Trend: true},
		5: {Kind: tools.KindSeenRecommendations},
	}
}

// ToolInvocation is a resolved lookup with its parameters bound to the conversation
type ToolInvocation struct {
	Kind   tools.Kind
	Params tools.Params
	Trend  bool
}

// Resolve binds the plan entry for turn to conv's inputs
func (p ToolPlan) Resolve(turn int, conv *state.Conversation) ToolInvocation {
	entry, ok := p[turn]
	if !ok || entry.Kind == tools.KindNone {
		return ToolInvocation{Kind: tools.KindNone}
	}

	inv := ToolInvocation{Kind: entry.Kind, Trend: entry.Trend}
	switch entry.Kind {
	case tools.KindWebSearch:
		inv.Params.Query = firstGenre(conv, constants.DefaultSearchGenre) + " 映画 オススメ"
	case tools.KindNowShowing, tools.KindComingSoon:
		inv.Params.Limit = entry.Limit
	case tools.KindGenreCatalogue:
		genre := firstGenre(conv, "")
		if genre == "" {
			// Nothing to filter on
			return ToolInvocation{Kind: tools.KindNone}
		}
		inv.Params.Genre = genre
		inv.Params.Limit = entry.Limit
	case tools.KindSeenRecommendations:
		inv.Params.Seen = conv.SeenItems
	}
	return inv
}

func firstGenre(conv *state.Conversation, fallback string) string {
	if len(conv.Genres) > 0 && conv.Genres[0] != "" {
		return conv.Genres[0]
	}
	return fallback
}
