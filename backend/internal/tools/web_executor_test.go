package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "moviesalon/backend/pkg/errors"
)

func TestSearchTavily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "secret", req.APIKey)
		assert.Equal(t, "SF 映画 オススメ", req.Query)
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 3, req.MaxResults)
		assert.False(t, req.IncludeAnswer)

		_ = json.NewEncoder(w).Encode(tavilyResponse{Results: []SearchResult{
			{Title: "SF映画10選", URL: "https://example.com/sf", Content: "名作ばかり"},
			{Title: "新作SF", URL: "https://example.com/new", Content: ""},
		}})
	}))
	defer srv.Close()

	e := newTestExecutor(ExecutorConfig{TavilyURL: srv.URL, TavilyAPIKey: "secret"})
	results, err := e.Query(context.Background(), KindWebSearch, Params{Query: "SF 映画 オススメ"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SF映画10選（https://example.com/sf）\n名作ばかり",
		"新作SF（https://example.com/new）\n",
	}, results)
}

func TestSearchTavily_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad key"}`))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  ExecutorConfig
		q    string
	}{
		{name: "missing key", cfg: ExecutorConfig{TavilyURL: srv.URL}, q: "q"},
		{name: "empty query", cfg: ExecutorConfig{TavilyURL: srv.URL, TavilyAPIKey: "k"}, q: ""},
		{name: "http error", cfg: ExecutorConfig{TavilyURL: srv.URL, TavilyAPIKey: "k"}, q: "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExecutor(tt.cfg)
			_, err := e.Query(context.Background(), KindWebSearch, Params{Query: tt.q})
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTool))
		})
	}
}

func TestQuery_UnknownAndNone(t *testing.T) {
	e := newTestExecutor(DefaultExecutorConfig())

	results, err := e.Query(context.Background(), KindNone, Params{})
	assert.NoError(t, err)
	assert.Empty(t, results)

	_, err = e.Query(context.Background(), Kind("astrology"), Params{})
	require.Error(t, err)
	var notFound *apperrors.ErrToolNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "astrology", notFound.ToolKind)
}
