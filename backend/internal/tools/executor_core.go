package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "moviesalon/backend/pkg/errors"
	"moviesalon/backend/pkg/logger"
)

// Kind identifies a retrieval tool
type Kind string

const (
	KindNone                Kind = "none"
	KindWebSearch           Kind = "web_search"
	KindNowShowing          Kind = "now_showing"
	KindComingSoon          Kind = "coming_soon"
	KindGenreCatalogue      Kind = "genre_catalogue"
	KindSeenRecommendations Kind = "seen_recommendations"
)

// Params carries the inputs of a single tool invocation. Each kind reads only its own fields.
type Params struct {
	Query string // web_search
	Limit int    // now_showing, coming_soon, genre_catalogue
	Genre string // genre_catalogue
	Seen  string // seen_recommendations: comma separated titles
}

// ExecutorConfig holds endpoints and credentials for every tool
type ExecutorConfig struct {
	TavilyURL      string
	TavilyAPIKey   string
	TMDbURL        string
	TMDbAPIKey     string
	TMDbLanguage   string
	FilmarksURL    string
	ScrapeInterval time.Duration
	Timeout        time.Duration
	MaxPerMovie    int
}

// DefaultExecutorConfig returns the public endpoints with no credentials
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		TavilyURL:      "https://api.tavily.com/search",
		TMDbURL:        "https://api.themoviedb.org/3",
		TMDbLanguage:   "ja-JP",
		FilmarksURL:    "https://filmarks.com",
		ScrapeInterval: 500 * time.Millisecond,
		Timeout:        30 * time.Second,
		MaxPerMovie:    2,
	}
}

// Executor answers tool queries. It is safe for concurrent use by many sessions.
type Executor struct {
	cfg           ExecutorConfig
	httpClient    *http.Client
	scrapeLimiter *rate.Limiter
	logger        *zap.Logger
}

// NewExecutor creates a new tool executor
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxPerMovie <= 0 {
		cfg.MaxPerMovie = 2
	}
	if cfg.TMDbLanguage == "" {
		cfg.TMDbLanguage = "ja-JP"
	}

	limit := rate.Inf
	if cfg.ScrapeInterval > 0 {
		limit = rate.Every(cfg.ScrapeInterval)
	}

	return &Executor{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		scrapeLimiter: rate.NewLimiter(limit, 1),
		logger:        logger.Get(),
	}
}

// Query runs the tool identified by kind and returns its snippets in display order
func (e *Executor) Query(ctx context.Context, kind Kind, params Params) ([]string, error) {
	start := time.Now()

	var (
		results []string
		err     error
	)
	switch kind {
	case KindNone:
		return nil, nil
	case KindWebSearch:
		results, err = e.searchTavily(ctx, params.Query)
	case KindNowShowing:
		results, err = e.fetchFilmarksList(ctx, filmarksNowPath, params.Limit)
	case KindComingSoon:
		results, err = e.fetchFilmarksList(ctx, filmarksComingPath, params.Limit)
	case KindGenreCatalogue:
		results, err = e.fetchGenreCatalogue(ctx, params.Genre, params.Limit)
	case KindSeenRecommendations:
		results, err = e.recommendFromSeen(ctx, params.Seen)
	default:
		return nil, apperrors.NewToolNotFound(string(kind))
	}

	if err != nil {
		e.logger.Warn("Tool query failed",
			zap.String("tool", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Debug("Tool query finished",
		zap.String("tool", string(kind)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// newRequest builds a request with the headers every tool sends
func newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"
