package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	apperrors "moviesalon/backend/pkg/errors"
)

// ============================================================================
// Web Search (Tavily)
// ============================================================================

const tavilyMaxResults = 3

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// SearchResult represents a single search result
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// searchTavily returns up to three "title（url）\ncontent" snippets
func (e *Executor) searchTavily(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return nil, apperrors.NewToolFailed(string(KindWebSearch), "query is required", nil)
	}
	if e.cfg.TavilyAPIKey == "" {
		return nil, apperrors.NewToolFailed(string(KindWebSearch), "TAVILY_API_KEY is not configured", nil)
	}

	e.logger.Debug("Web search", zap.String("query", query))

	payload, err := json.Marshal(tavilyRequest{
		APIKey:        e.cfg.TavilyAPIKey,
		Query:         query,
		SearchDepth:   "advanced",
		MaxResults:    tavilyMaxResults,
		IncludeAnswer: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := newRequest(ctx, http.MethodPost, e.cfg.TavilyURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewToolFailed(string(KindWebSearch), "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewToolFailed(string(KindWebSearch), fmt.Sprintf("HTTP %d: %s", resp.StatusCode, body), nil)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewToolFailed(string(KindWebSearch), "invalid response body", err)
	}

	return formatSearchResults(parsed.Results), nil
}

func formatSearchResults(results []SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, fmt.Sprintf("%s（%s）\n%s", r.Title, r.URL, r.Content))
	}
	return out
}
