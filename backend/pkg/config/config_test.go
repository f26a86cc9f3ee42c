package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "moviesalon/backend/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAX_TURNS", "")
	t.Setenv("STEP_DELAY_MS", "")
	t.Setenv("MODEL_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.MaxTurns)
	assert.Equal(t, 300*time.Millisecond, cfg.StepDelay)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelID)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapeInterval)
	assert.Equal(t, "最近おすすめの映画", cfg.DefaultTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_TURNS", "4")
	t.Setenv("STEP_DELAY_MS", "0")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxTurns)
	assert.Equal(t, time.Duration(0), cfg.StepDelay)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLMBaseURL:     "http://localhost:4000/v1",
			ModelID:        "gpt-4o-mini",
			ProfilesPath:   "profiles.json",
			MaxTurns:       6,
			LLMMaxAttempts: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.LLMBaseURL = "" }, wantErr: true},
		{name: "missing model", mutate: func(c *Config) { c.ModelID = "" }, wantErr: true},
		{name: "zero turns", mutate: func(c *Config) { c.MaxTurns = 0 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.LLMMaxAttempts = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.StepDelay = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}
