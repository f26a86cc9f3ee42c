package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesalon/backend/internal/adapter"
	"moviesalon/backend/internal/agent"
	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/profiles"
	"moviesalon/backend/internal/state"
	apperrors "moviesalon/backend/pkg/errors"
)

type frame struct {
	event string
	data  interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	frames []frame
	onEmit func(n int)
}

func (r *recordingEmitter) Emit(event string, data interface{}) error {
	r.mu.Lock()
	r.frames = append(r.frames, frame{event: event, data: data})
	n := len(r.frames)
	r.mu.Unlock()
	if r.onEmit != nil {
		r.onEmit(n)
	}
	return nil
}

func (r *recordingEmitter) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, f := range r.frames {
		if f.event == constants.StreamMessageEvent {
			out = append(out, f.data.(Message))
		}
	}
	return out
}

type mockLLMAdapter struct {
	calls        atomic.Int32
	generateFunc func(ctx context.Context, systemPrompt, userMsg string) (*adapter.Response, error)
}

func (m *mockLLMAdapter) Generate(ctx context.Context, systemPrompt, userMsg string) (*adapter.Response, error) {
	m.calls.Add(1)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, systemPrompt, userMsg)
	}
	return &adapter.Response{Content: "次の話者：ルフィ\nコメント：どうぞ"}, nil
}

func testStore() *profiles.Store {
	return profiles.NewStore(map[string]state.Profile{
		"司会":  {Occupation: "司会者"},
		"ルフィ": {Occupation: "海賊"},
	})
}

func newTestStreamer(llm agent.LLM, maxTurns int) *Streamer {
	orch := agent.NewOrchestrator(llm, nil, agent.Config{MaxTurns: maxTurns})
	return NewStreamer(orch, testStore(), Config{})
}

func TestStream_FullDiscussion(t *testing.T) {
	s := newTestStreamer(&mockLLMAdapter{}, 6)
	emitter := &recordingEmitter{}

	err := s.Stream(context.Background(), Params{Participants: []string{"司会", "ルフィ"}}, emitter)
	require.NoError(t, err)

	msgs := emitter.messages()
	require.Len(t, msgs, 18)
	require.NotNil(t, msgs[0].LastSpeaker)
	assert.Equal(t, "司会", *msgs[0].LastSpeaker)
	assert.False(t, msgs[0].IsSummary)
	assert.True(t, msgs[1].IsSummary)

	summaries := 0
	for _, m := range msgs {
		require.NotNil(t, m.LastSpeaker)
		if m.IsSummary {
			summaries++
		}
	}
	assert.Equal(t, 6, summaries)

	last := emitter.frames[len(emitter.frames)-1]
	assert.Equal(t, constants.StreamEndEvent, last.event)
	assert.Equal(t, constants.StreamEndData, last.data)
}

func TestStream_CancelBetweenEvents(t *testing.T) {
	s := newTestStreamer(&mockLLMAdapter{}, 6)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emitter := &recordingEmitter{onEmit: func(n int) {
		if n == 2 {
			cancel()
		}
	}}

	err := s.Stream(ctx, Params{Participants: []string{"司会", "ルフィ"}}, emitter)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext))
	assert.Len(t, emitter.frames, 2)
}

func TestStream_InFlightStepIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	llm := &mockLLMAdapter{}
	llm.generateFunc = func(callCtx context.Context, systemPrompt, userMsg string) (*adapter.Response, error) {
		if llm.calls.Load() == 3 {
			cancel()
			// The step itself must not observe the cancellation
			assert.NoError(t, callCtx.Err())
		}
		return &adapter.Response{Content: "次の話者：ルフィ\nコメント：どうぞ"}, nil
	}
	s := newTestStreamer(llm, 6)
	emitter := &recordingEmitter{}

	err := s.Stream(ctx, Params{Participants: []string{"司会", "ルフィ"}}, emitter)
	require.Error(t, err)
	assert.Len(t, emitter.frames, 2)
	assert.Equal(t, int32(3), llm.calls.Load())
}

func TestStream_GenerationFailure(t *testing.T) {
	llm := &mockLLMAdapter{}
	llm.generateFunc = func(ctx context.Context, systemPrompt, userMsg string) (*adapter.Response, error) {
		if strings.Contains(systemPrompt, "書記") {
			return nil, errors.New("rate limited")
		}
		return &adapter.Response{Content: "ようこそ"}, nil
	}
	s := newTestStreamer(llm, 6)
	emitter := &recordingEmitter{}

	err := s.Stream(context.Background(), Params{Participants: []string{"司会", "ルフィ"}}, emitter)
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))

	require.Len(t, emitter.frames, 2)
	assert.Equal(t, constants.StreamMessageEvent, emitter.frames[0].event)
	assert.Equal(t, constants.StreamErrEvent, emitter.frames[1].event)
	assert.Contains(t, emitter.frames[1].data.(ErrorPayload).Error, "rate limited")
}

func TestSessionOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"completed", nil, outcomeCompleted},
		{"cancelled", apperrors.NewContextCancelled("stream", context.Canceled), outcomeCancelled},
		{"generation", apperrors.NewGenerationFailed("speaker", "gpt", errors.New("boom")), outcomeFailed},
		{"speaker", apperrors.NewSpeakerUnresolved("未定"), outcomeFailed},
		{"consumer gone", context.Canceled, outcomeCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sessionOutcome(tt.err))
		})
	}
}

func TestStream_RejectsInvalidParams(t *testing.T) {
	s := newTestStreamer(&mockLLMAdapter{}, 6)
	emitter := &recordingEmitter{}

	err := s.Stream(context.Background(), Params{}, emitter)
	require.Error(t, err)
	var invalid state.ErrInvalidConversation
	assert.True(t, errors.As(err, &invalid))
	assert.Empty(t, emitter.frames)
}

func TestStream_ConcurrentSessions(t *testing.T) {
	s := newTestStreamer(&mockLLMAdapter{}, 4)

	var wg sync.WaitGroup
	emitters := make([]*recordingEmitter, 8)
	errs := make([]error, len(emitters))
	for i := range emitters {
		emitters[i] = &recordingEmitter{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Stream(context.Background(), Params{Participants: []string{"司会", "ルフィ"}}, emitters[i])
		}(i)
	}
	wg.Wait()

	for i, e := range emitters {
		assert.NoError(t, errs[i])
		// intro, summary, three speaking rounds, closing
		assert.Len(t, e.messages(), 12)
	}
}

func TestNewConversation(t *testing.T) {
	s := newTestStreamer(&mockLLMAdapter{}, 6)

	conv, err := s.NewConversation(Params{
		Topic:        "  ",
		UserNote:     " 泣ける映画 ",
		Genres:       []string{"SF"},
		SeenItems:    " インセプション ",
		Participants: []string{"司会", "ルフィ", "謎の人物"},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultTopic, conv.Topic)
	assert.Equal(t, "泣ける映画", conv.UserNote)
	assert.Equal(t, "インセプション", conv.SeenItems)
	assert.Equal(t, "海賊", conv.Profile("ルフィ").Occupation)
	assert.True(t, conv.Profile("謎の人物").IsEmpty())
}

func TestParseLists(t *testing.T) {
	assert.Equal(t, []string{"SF", "ホラー"}, ParseGenres(" SF, ,ホラー,"))
	assert.Nil(t, ParseGenres(""))
	assert.Equal(t, []string{"司会", "ルフィ"}, ParseParticipants("司会,ルフィ"))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(agent.Event{Speaker: "ルフィ", Text: "こんにちは"})
	require.NotNil(t, msg.LastSpeaker)
	assert.Equal(t, "ルフィ", *msg.LastSpeaker)

	assert.Nil(t, NewMessage(agent.Event{}).LastSpeaker)
}
