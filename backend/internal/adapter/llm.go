package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "moviesalon/backend/pkg/errors"
	"moviesalon/backend/pkg/logger"
)

// AdapterConfig configures the chat completion client
type AdapterConfig struct {
	BaseURL     string // OpenAI-compatible endpoint, including the /v1 suffix
	APIKey      string
	Model       string
	Temperature float32
	MaxAttempts int           // 1 means no retry
	Backoff     time.Duration // Multiplied by the attempt number between retries
}

// LLMAdapter handles communication with an OpenAI-compatible chat endpoint
type LLMAdapter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(cfg AdapterConfig) *LLMAdapter {
	// LiteLLM and local gateways accept any key
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	return &LLMAdapter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		logger:      logger.Get(),
	}
}

// Model returns the model ID requests are sent to
func (a *LLMAdapter) Model() string {
	return a.model
}

// Response represents the LLM's response
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Generate sends a system + user prompt pair and returns the first choice
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt, userMsg string) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMsg,
			},
		},
		Temperature: a.temperature,
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * a.backoff
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.NewContextCancelled("llm retry backoff", ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		errMsg := err.Error()
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)

		// A gateway answering with an HTML error page surfaces as a JSON decode failure
		if strings.Contains(errMsg, "invalid character") {
			a.logger.Warn("LLM service returned non-JSON error response",
				zap.String("error", errMsg),
			)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to generate response after %d attempts: %w", a.maxAttempts, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ErrEmptyGeneration
	}

	response := &Response{
		Content:          strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}

	a.logger.Debug("LLM response generated",
		zap.String("model", a.model),
		zap.Int("prompt_tokens", response.PromptTokens),
		zap.Int("completion_tokens", response.CompletionTokens),
		zap.Bool("has_content", response.Content != ""),
	)

	return response, nil
}
