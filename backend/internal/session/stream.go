package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moviesalon/backend/internal/agent"
	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
	apperrors "moviesalon/backend/pkg/errors"
	"moviesalon/backend/pkg/logger"
)

// ProfileSource resolves participant names to profiles
type ProfileSource interface {
	Select(names []string) (map[string]state.Profile, []string)
}

// Emitter delivers one named frame to the consumer. An error means the consumer is gone.
type Emitter interface {
	Emit(event string, data interface{}) error
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(event string, data interface{}) error

func (f EmitterFunc) Emit(event string, data interface{}) error {
	return f(event, data)
}

// Message is the payload of every discussion event
type Message struct {
	LastSpeaker *string `json:"last_speaker"`
	Text        string  `json:"text"`
	IsSummary   bool    `json:"is_summary"`
}

// ErrorPayload is sent in the error frame when a discussion fails
type ErrorPayload struct {
	Error string `json:"error"`
}

// Config holds streamer configuration
type Config struct {
	StepDelay    time.Duration
	DefaultTopic string
}

// DefaultConfig returns the standard pacing
func DefaultConfig() Config {
	return Config{
		StepDelay:    300 * time.Millisecond,
		DefaultTopic: constants.DefaultTopic,
	}
}

// Streamer runs discussions for clients. Sessions share nothing but the orchestrator and
// the profile catalogue, both read-only, so any number may stream at once.
type Streamer struct {
	orch     *agent.Orchestrator
	profiles ProfileSource
	cfg      Config
}

// NewStreamer creates a new session streamer
func NewStreamer(orch *agent.Orchestrator, profiles ProfileSource, cfg Config) *Streamer {
	if cfg.DefaultTopic == "" {
		cfg.DefaultTopic = constants.DefaultTopic
	}
	if cfg.StepDelay < 0 {
		cfg.StepDelay = 0
	}
	return &Streamer{
		orch:     orch,
		profiles: profiles,
		cfg:      cfg,
	}
}

// NewConversation builds the initial discussion state from client inputs
func (s *Streamer) NewConversation(p Params) (*state.Conversation, error) {
	topic := strings.TrimSpace(p.Topic)
	if topic == "" {
		topic = s.cfg.DefaultTopic
	}

	var profiles map[string]state.Profile
	if s.profiles != nil {
		profiles, _ = s.profiles.Select(p.Participants)
	}
	return state.NewConversation(topic, strings.TrimSpace(p.UserNote), p.Genres, strings.TrimSpace(p.SeenItems), p.Participants, profiles)
}

// Stream runs one discussion and emits a message frame per completed action, then the end marker.
// Once ctx is done no further step is started, and a step that was in flight when it happened is discarded.
func (s *Streamer) Stream(ctx context.Context, p Params, emit Emitter) (err error) {
	sessionID := uuid.NewString()
	log := logger.ForSession(sessionID)

	conv, err := s.NewConversation(p)
	if err != nil {
		metricSessionsTotal.WithLabelValues(outcomeRejected).Inc()
		return err
	}

	metricSessionsActive.Inc()
	defer metricSessionsActive.Dec()

	defer func() {
		metricSessionsTotal.WithLabelValues(sessionOutcome(err)).Inc()
	}()

	log.Info("Discussion started",
		zap.String("topic", conv.Topic),
		zap.Strings("participants", conv.Participants),
		zap.Strings("genres", conv.Genres),
	)
	start := time.Now()

	run := s.orch.Start(conv)
	run.SetLogger(log)

	emitted := 0
	for !run.Done() {
		if emitted > 0 && !s.pause(ctx) {
			return s.cancelled(ctx, log, emitted)
		}
		if ctx.Err() != nil {
			return s.cancelled(ctx, log, emitted)
		}

		// Calls already in flight are never preempted
		ev, err := run.Step(context.WithoutCancel(ctx))
		if err != nil {
			log.Error("Discussion failed", zap.Int("events", emitted), zap.Error(err))
			if emitErr := emit.Emit(constants.StreamErrEvent, ErrorPayload{Error: err.Error()}); emitErr != nil {
				log.Debug("Failed to deliver error frame", zap.Error(emitErr))
			}
			return err
		}
		if ctx.Err() != nil {
			return s.cancelled(ctx, log, emitted)
		}

		if err := emit.Emit(constants.StreamMessageEvent, NewMessage(ev)); err != nil {
			log.Info("Consumer stopped receiving", zap.Int("events", emitted), zap.Error(err))
			return err
		}
		emitted++
	}

	if err := emit.Emit(constants.StreamEndEvent, constants.StreamEndData); err != nil {
		log.Debug("Failed to deliver end marker", zap.Error(err))
	}

	log.Info("Discussion finished",
		zap.Int("events", emitted),
		zap.Int("summaries", len(conv.Summaries)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// sessionOutcome classifies how a started discussion ended. Errors from the
// consumer side count as cancellations.
func sessionOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeCompleted
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		return outcomeCancelled
	case apperrors.IsFatal(err):
		return outcomeFailed
	default:
		return outcomeCancelled
	}
}

// pause waits StepDelay between events. It returns false if ctx ended first.
func (s *Streamer) pause(ctx context.Context) bool {
	if s.cfg.StepDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.cfg.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Streamer) cancelled(ctx context.Context, log *zap.Logger, emitted int) error {
	log.Info("Discussion cancelled by consumer", zap.Int("events", emitted))
	return apperrors.NewContextCancelled("stream", ctx.Err())
}

// NewMessage converts an orchestrator event to its wire payload
func NewMessage(ev agent.Event) Message {
	msg := Message{Text: ev.Text, IsSummary: ev.IsSummary}
	if ev.Speaker != "" {
		speaker := ev.Speaker
		msg.LastSpeaker = &speaker
	}
	return msg
}
