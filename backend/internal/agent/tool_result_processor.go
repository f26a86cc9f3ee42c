package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/tools"
	apperrors "moviesalon/backend/pkg/errors"
)

// ToolResultProcessor runs a speaker's lookup and turns the outcome into prompt text.
// Lookup failures never abort a turn; they become a placeholder the speaker can talk around.
type ToolResultProcessor struct {
	provider ToolProvider
	logger   *zap.Logger
}

// NewToolResultProcessor creates a new tool result processor. provider may be nil.
func NewToolResultProcessor(provider ToolProvider, logger *zap.Logger) *ToolResultProcessor {
	return &ToolResultProcessor{
		provider: provider,
		logger:   logger,
	}
}

// Process executes inv and returns the text handed to the speaker prompt
func (p *ToolResultProcessor) Process(ctx context.Context, inv ToolInvocation) string {
	if inv.Kind == tools.KindNone || p.provider == nil {
		return constants.PlaceholderNoLookup
	}

	results, err := p.provider.Query(ctx, inv.Kind, inv.Params)
	if err != nil {
		metricToolFailures.WithLabelValues(string(inv.Kind)).Inc()
		failure := apperrors.NewToolFailed(string(inv.Kind), "lookup failed", err)
		p.logger.Warn("Tool lookup failed, continuing with placeholder",
			zap.String("tool", string(inv.Kind)),
			zap.Error(failure),
		)
		// Error text may carry endpoint details; the prompt only names the lookup
		return constants.PlaceholderToolFailure + string(inv.Kind)
	}

	var snippets []string
	for _, r := range results {
		if r = strings.TrimSpace(r); r != "" {
			snippets = append(snippets, r)
		}
	}
	if len(snippets) == 0 {
		return constants.PlaceholderNoLookup
	}

	p.logger.Info("Tool lookup completed",
		zap.String("tool", string(inv.Kind)),
		zap.Int("results", len(snippets)),
	)
	return strings.Join(snippets, "\n\n")
}
