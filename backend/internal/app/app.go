// Package app wires configuration into the discussion stack shared by the server and the CLI.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"moviesalon/backend/internal/adapter"
	"moviesalon/backend/internal/agent"
	"moviesalon/backend/internal/profiles"
	"moviesalon/backend/internal/session"
	"moviesalon/backend/internal/tools"
	"moviesalon/backend/pkg/config"
	"moviesalon/backend/pkg/logger"
)

// App holds the long-lived components. All of them are safe for concurrent use.
type App struct {
	Config   *config.Config
	LLM      *adapter.LLMAdapter
	Tools    *tools.Executor
	Profiles *profiles.Store
	Streamer *session.Streamer
}

// New builds every component from cfg
func New(cfg *config.Config) (*App, error) {
	log := logger.Get()

	store, err := profiles.Load(cfg.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load character profiles from %s: %w", cfg.ProfilesPath, err)
	}

	llm := adapter.NewLLMAdapter(adapter.AdapterConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.ModelID,
		Temperature: float32(cfg.LLMTemperature),
		MaxAttempts: cfg.LLMMaxAttempts,
		Backoff:     time.Second,
	})

	toolCfg := tools.DefaultExecutorConfig()
	toolCfg.TavilyURL = cfg.TavilyURL
	toolCfg.TavilyAPIKey = cfg.TavilyAPIKey
	toolCfg.TMDbURL = cfg.TMDbURL
	toolCfg.TMDbAPIKey = cfg.TMDbAPIKey
	toolCfg.FilmarksURL = cfg.FilmarksURL
	toolCfg.ScrapeInterval = cfg.ScrapeInterval
	toolCfg.Timeout = cfg.ToolTimeout
	executor := tools.NewExecutor(toolCfg)

	if cfg.TavilyAPIKey == "" {
		log.Warn("TAVILY_API_KEY not set, web search turns will fall back to a placeholder")
	}
	if cfg.TMDbAPIKey == "" {
		log.Warn("TMDB_API_KEY not set, seen-movie recommendations will fall back to a placeholder")
	}

	plan := agent.DefaultToolPlan()
	orch := agent.NewOrchestrator(llm, executor, agent.Config{
		MaxTurns: cfg.MaxTurns,
		Plan:     plan,
	})

	streamer := session.NewStreamer(orch, store, session.Config{
		StepDelay:    cfg.StepDelay,
		DefaultTopic: cfg.DefaultTopic,
	})

	log.Info("Discussion stack ready",
		zap.String("model", llm.Model()),
		zap.Int("characters", store.Len()),
		zap.Int("max_turns", orch.MaxTurns()),
	)

	return &App{
		Config:   cfg,
		LLM:      llm,
		Tools:    executor,
		Profiles: store,
		Streamer: streamer,
	}, nil
}
