package agent

import (
	"context"

	"go.uber.org/zap"

	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
	apperrors "moviesalon/backend/pkg/errors"
)

// moderate runs the moderator role. Which of its three branches runs depends on the progress so far:
// the opening before any turn, the closing once the turn ceiling is reached, otherwise a selection.
func (r *Run) moderate(ctx context.Context) error {
	conv := r.conv
	host := conv.Host()

	switch {
	case conv.TurnCount == 0:
		text, err := r.generate(ctx, buildIntroPrompt(conv))
		if err != nil {
			return err
		}
		conv.LastSpeaker = host
		conv.LastComment = text
		conv.TurnCount++
		conv.AwaitingSummary = true
		conv.Kind = state.KindMessage

	case conv.TurnCount >= r.orch.config.MaxTurns || len(conv.Guests()) == 0:
		text, err := r.generate(ctx, buildClosingPrompt(conv))
		if err != nil {
			return err
		}
		conv.LastSpeaker = host
		conv.LastComment = text
		conv.NextSpeaker = constants.SpeakerNone
		conv.Kind = state.KindMessage

	default:
		text, err := r.generate(ctx, buildSelectionPrompt(conv))
		if err != nil {
			return err
		}
		sel := ParseSelection(text)
		next := sel.NextSpeaker(conv.IsGuest)
		if next == constants.SpeakerUndetermined {
			metricSelectionUnparsed.Inc()
			r.logger.Warn("Moderator did not select a valid guest",
				zap.String("selected", sel.Speaker),
				zap.Strings("guests", conv.Guests()),
				zap.Error(apperrors.NewSelectionUnparsed(sel.Raw)),
			)
		}
		conv.LastSpeaker = host
		conv.LastComment = sel.Comment
		conv.NextSpeaker = next
		// The hand-off itself is not summarized; the guest's reply is
		conv.AwaitingSummary = false
		conv.Kind = state.KindMessage
	}
	return nil
}

// speak runs the selected guest's turn, grounded in the lookup the tool plan assigns to this turn
func (r *Run) speak(ctx context.Context) error {
	conv := r.conv
	speaker := conv.NextSpeaker
	if !conv.IsGuest(speaker) {
		return apperrors.NewSpeakerUnresolved(speaker)
	}

	inv := r.orch.config.Plan.Resolve(conv.TurnCount, conv)
	lookup := NewToolResultProcessor(r.orch.tools, r.logger).Process(ctx, inv)

	text, err := r.generate(ctx, buildSpeakerPrompt(conv, speaker, lookup, inv.Trend))
	if err != nil {
		return err
	}
	conv.LastSpeaker = speaker
	conv.LastComment = text
	conv.TurnCount++
	conv.AwaitingSummary = true
	conv.Kind = state.KindMessage
	return nil
}

// summarize condenses the latest contribution into the summary log
func (r *Run) summarize(ctx context.Context) error {
	conv := r.conv
	text, err := r.generate(ctx, buildSummaryPrompt(conv))
	if err != nil {
		return err
	}
	conv.AppendSummary(conv.LastSpeaker, text)
	conv.AwaitingSummary = false
	conv.Kind = state.KindSummary
	return nil
}
