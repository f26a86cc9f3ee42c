package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moviesalon/backend/internal/adapter"
	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
	"moviesalon/backend/internal/tools"
	apperrors "moviesalon/backend/pkg/errors"
	"moviesalon/backend/pkg/logger"
)

// ErrDone is returned by Step once the discussion has been closed
var ErrDone = errors.New("discussion is finished")

// LLM generates text for one role invocation
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userMsg string) (*adapter.Response, error)
}

// ToolProvider answers retrieval queries for speakers
type ToolProvider interface {
	Query(ctx context.Context, kind tools.Kind, params tools.Params) ([]string, error)
}

// Config holds orchestrator configuration
type Config struct {
	MaxTurns int
	Plan     ToolPlan
}

// DefaultConfig returns the standard six-turn discussion with the default tool plan
func DefaultConfig() Config {
	return Config{
		MaxTurns: constants.DefaultMaxTurns,
		Plan:     DefaultToolPlan(),
	}
}

// Orchestrator runs discussions. It holds no per-discussion state and can start any number of runs concurrently.
type Orchestrator struct {
	llm    LLM
	tools  ToolProvider
	config Config
	logger *zap.Logger
}

// NewOrchestrator creates a new discussion orchestrator. tools may be nil, in which case no lookups are made.
func NewOrchestrator(llm LLM, tools ToolProvider, config Config) *Orchestrator {
	if llm == nil {
		panic("agent: llm must not be nil")
	}
	if config.MaxTurns < 1 {
		config.MaxTurns = constants.DefaultMaxTurns
	}
	if config.Plan == nil {
		config.Plan = DefaultToolPlan()
	}
	return &Orchestrator{
		llm:    llm,
		tools:  tools,
		config: config,
		logger: logger.Get(),
	}
}

// MaxTurns returns the configured turn ceiling
func (o *Orchestrator) MaxTurns() int {
	return o.config.MaxTurns
}

// Start begins a new run over conv. The run owns conv until it finishes.
func (o *Orchestrator) Start(conv *state.Conversation) *Run {
	return &Run{
		orch:   o,
		conv:   conv,
		stage:  StageModerate,
		logger: o.logger,
	}
}

// Run drives a discussion to completion, handing every event to yield.
// A non-nil error from yield stops the run and is returned as is.
func (o *Orchestrator) Run(ctx context.Context, conv *state.Conversation, yield func(Event) error) error {
	run := o.Start(conv)
	for !run.Done() {
		if err := ctx.Err(); err != nil {
			return apperrors.NewContextCancelled("discussion", err)
		}
		ev, err := run.Step(ctx)
		if err != nil {
			if errors.Is(err, ErrDone) {
				return nil
			}
			return err
		}
		if err := yield(ev); err != nil {
			return err
		}
	}
	return nil
}

// Run is one discussion in progress. It is not safe for concurrent use: every step depends on the previous one.
type Run struct {
	orch   *Orchestrator
	conv   *state.Conversation
	stage  Stage
	err    error
	logger *zap.Logger
}

// SetLogger replaces the run's logger, typically with a session-scoped one
func (r *Run) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Stage returns the stage the next Step will execute
func (r *Run) Stage() Stage {
	return r.stage
}

// Done reports whether the run reached the terminal stage or failed
func (r *Run) Done() bool {
	return r.stage == StageDone || r.err != nil
}

// Err returns the fatal error that stopped the run, if any
func (r *Run) Err() error {
	return r.err
}

// State exposes the conversation. Callers must not mutate it while the run is active.
func (r *Run) State() *state.Conversation {
	return r.conv
}

// Step executes the current stage's action, advances to the next stage and returns the produced event.
func (r *Run) Step(ctx context.Context) (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}
	if r.stage == StageDone {
		return Event{}, ErrDone
	}

	stage := r.stage
	start := time.Now()

	var err error
	switch stage {
	case StageModerate:
		err = r.moderate(ctx)
	case StageSpeak:
		err = r.speak(ctx)
	case StageSummarize:
		err = r.summarize(ctx)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}
	metricStepDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.err = err
		r.logger.Error("Discussion step failed",
			zap.String("stage", string(stage)),
			zap.Int("turn", r.conv.TurnCount),
			zap.Error(err),
		)
		return Event{}, err
	}

	ev := r.event(stage)
	if err := r.transition(nextStage(stage, r.conv)); err != nil {
		r.err = err
		return Event{}, err
	}

	r.logger.Debug("Discussion step completed",
		zap.String("stage", string(stage)),
		zap.String("next", string(r.stage)),
		zap.String("speaker", ev.Speaker),
		zap.Int("turn", r.conv.TurnCount),
	)
	return ev, nil
}

func (r *Run) transition(to Stage) error {
	if !canTransition(r.stage, to) {
		return apperrors.NewInvalidTransition(string(r.stage), string(to))
	}
	metricStageTransitions.WithLabelValues(string(r.stage), string(to)).Inc()
	r.stage = to
	return nil
}

func (r *Run) event(stage Stage) Event {
	ev := Event{
		Stage:     stage,
		Turn:      r.conv.TurnCount,
		Speaker:   r.conv.LastSpeaker,
		Text:      r.conv.LastComment,
		IsSummary: r.conv.Kind == state.KindSummary,
		Final:     r.conv.Terminated(),
	}
	if ev.IsSummary {
		last := r.conv.Summaries[len(r.conv.Summaries)-1]
		ev.Speaker = last.Speaker
		ev.Text = last.Text
	}
	return ev
}

// generate invokes the text generator for one role. Any failure is fatal to the run.
func (r *Run) generate(ctx context.Context, prompt RolePrompt) (string, error) {
	resp, err := r.orch.llm.Generate(ctx, prompt.System, prompt.User)
	if err == nil && (resp == nil || resp.Content == "") {
		err = apperrors.ErrEmptyGeneration
	}
	if err != nil {
		metricGenerationFailures.WithLabelValues(prompt.Role).Inc()
		return "", apperrors.NewGenerationFailed(prompt.Role, r.modelName(), err)
	}
	return resp.Content, nil
}

func (r *Run) modelName() string {
	if m, ok := r.orch.llm.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}
