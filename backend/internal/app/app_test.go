package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesalon/backend/pkg/config"
)

func testConfig(profilesPath string) *config.Config {
	return &config.Config{
		LLMBaseURL:     "http://127.0.0.1:0/v1",
		ModelID:        "test-model",
		LLMMaxAttempts: 1,
		ProfilesPath:   profilesPath,
		MaxTurns:       3,
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("司会:\n  職業: 司会者\nルフィ:\n  職業: 海賊\n"), 0o600))

	salon, err := New(testConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 2, salon.Profiles.Len())
	assert.Equal(t, "test-model", salon.LLM.Model())
	assert.NotNil(t, salon.Streamer)
	assert.NotNil(t, salon.Tools)
}

func TestNew_MissingProfiles(t *testing.T) {
	_, err := New(testConfig(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)
}
