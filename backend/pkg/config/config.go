package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "moviesalon/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port          string
	Env           string
	AllowedOrigin string

	// AI
	LLMBaseURL     string
	LLMAPIKey      string
	ModelID        string
	LLMMaxAttempts int
	LLMTemperature float64

	// Retrieval tools
	TavilyURL      string
	TavilyAPIKey   string
	TMDbURL        string
	TMDbAPIKey     string
	FilmarksURL    string
	ScrapeInterval time.Duration // Minimum gap between Filmarks detail page fetches
	ToolTimeout    time.Duration

	// Discussion
	ProfilesPath string
	MaxTurns     int
	StepDelay    time.Duration // Pause between streamed events, for client pacing only
	DefaultTopic string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "*"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		ModelID:        getEnv("MODEL_ID", "gpt-4o-mini"),
		LLMMaxAttempts: getEnvInt("LLM_MAX_ATTEMPTS", 1),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		TavilyURL:      getEnv("TAVILY_URL", "https://api.tavily.com/search"),
		TavilyAPIKey:   getEnv("TAVILY_API_KEY", ""),
		TMDbURL:        getEnv("TMDB_URL", "https://api.themoviedb.org/3"),
		TMDbAPIKey:     getEnv("TMDB_API_KEY", ""),
		FilmarksURL:    getEnv("FILMARKS_URL", "https://filmarks.com"),
		ScrapeInterval: time.Duration(getEnvInt("SCRAPE_INTERVAL_MS", 500)) * time.Millisecond,
		ToolTimeout:    time.Duration(getEnvInt("TOOL_TIMEOUT_SECONDS", 30)) * time.Second,
		ProfilesPath:   getEnv("PROFILES_PATH", "character_profiles.json"),
		MaxTurns:       getEnvInt("MAX_TURNS", 6),
		StepDelay:      time.Duration(getEnvInt("STEP_DELAY_MS", 300)) * time.Millisecond,
		DefaultTopic:   getEnv("DEFAULT_TOPIC", "最近おすすめの映画"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.LLMBaseURL == "" {
		return apperrors.NewConfigMissingRequired("LLM_BASE_URL")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigMissingRequired("MODEL_ID")
	}
	if c.ProfilesPath == "" {
		return apperrors.NewConfigMissingRequired("PROFILES_PATH")
	}
	if c.MaxTurns < 1 {
		return apperrors.NewConfigValidationFailed("MAX_TURNS", "must be at least 1")
	}
	if c.LLMMaxAttempts < 1 {
		return apperrors.NewConfigValidationFailed("LLM_MAX_ATTEMPTS", "must be at least 1")
	}
	if c.StepDelay < 0 {
		return apperrors.NewConfigValidationFailed("STEP_DELAY_MS", "cannot be negative")
	}
	// Tool API keys are optional: a missing key degrades that tool to a placeholder
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
