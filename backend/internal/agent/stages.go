package agent

import "moviesalon/backend/internal/state"

// Stage is a state of the discussion machine
type Stage string

const (
	StageModerate  Stage = "moderate"
	StageSpeak     Stage = "speak"
	StageSummarize Stage = "summarize"
	StageDone      Stage = "done"
)

var validTransitions = map[Stage][]Stage{
	StageModerate:  {StageSummarize, StageSpeak, StageDone},
	StageSpeak:     {StageSummarize},
	StageSummarize: {StageModerate},
	StageDone:      {},
}

func canTransition(from, to Stage) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// nextStage decides where the machine goes after from has completed.
// Only the closing moderation sets the terminate sentinel, so the loop only exits from Moderate.
func nextStage(from Stage, conv *state.Conversation) Stage {
	if conv.Terminated() {
		return StageDone
	}
	switch from {
	case StageSpeak:
		return StageSummarize
	case StageSummarize:
		return StageModerate
	}
	if conv.AwaitingSummary {
		return StageSummarize
	}
	return StageSpeak
}

// Event is the observable result of one completed action
type Event struct {
	Stage     Stage  `json:"stage"`
	Turn      int    `json:"turn"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	IsSummary bool   `json:"is_summary"`
	Final     bool   `json:"final"` // Set on the closing moderation only
}
