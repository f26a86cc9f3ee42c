package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "moviesalon/backend/pkg/errors"
)

// ============================================================================
// TMDb History-Based Recommendations
// ============================================================================

// MaxConcurrentLookups bounds parallel TMDb requests per query
const MaxConcurrentLookups = 3

type tmdbMovie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbPage struct {
	Results []tmdbMovie `json:"results"`
}

// SplitSeenTitles splits a comma separated watch history, dropping blanks
func SplitSeenTitles(seen string) []string {
	var titles []string
	for _, t := range strings.FieldsFunc(seen, func(r rune) bool { return r == ',' || r == '、' }) {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// recommendFromSeen returns one grouped block per seen title that has recommendations.
// Titles are looked up concurrently; output keeps the input order.
func (e *Executor) recommendFromSeen(ctx context.Context, seen string) ([]string, error) {
	titles := SplitSeenTitles(seen)
	if len(titles) == 0 {
		return nil, nil
	}
	if e.cfg.TMDbAPIKey == "" {
		return nil, apperrors.NewToolFailed(string(KindSeenRecommendations), "TMDB_API_KEY is not configured", nil)
	}

	blocks := make([]string, len(titles))
	errs := make([]error, len(titles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentLookups)
	for i, title := range titles {
		g.Go(func() error {
			block, err := e.recommendForTitle(gctx, title)
			if err != nil {
				e.logger.Debug("TMDb lookup failed",
					zap.String("title", title),
					zap.Error(err),
				)
				errs[i] = err
				return nil
			}
			blocks[i] = block
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(titles))
	failed := 0
	for i, block := range blocks {
		if errs[i] != nil {
			failed++
			continue
		}
		if block != "" {
			out = append(out, block)
		}
	}

	if failed == len(titles) {
		return nil, apperrors.NewToolFailed(string(KindSeenRecommendations), "every title lookup failed", errs[0])
	}
	return out, nil
}

func (e *Executor) recommendForTitle(ctx context.Context, title string) (string, error) {
	movieID, err := e.searchMovieID(ctx, title)
	if err != nil {
		return "", err
	}
	if movieID == 0 {
		return "", nil
	}

	var recs tmdbPage
	if err := e.tmdbGet(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), url.Values{"page": {"1"}}, &recs); err != nil {
		return "", err
	}

	limit := e.cfg.MaxPerMovie
	if len(recs.Results) < limit {
		limit = len(recs.Results)
	}

	var formatted []string
	for _, rec := range recs.Results[:limit] {
		var details tmdbMovie
		if err := e.tmdbGet(ctx, fmt.Sprintf("/movie/%d", rec.ID), nil, &details); err != nil {
			return "", err
		}
		overview := strings.TrimSpace(details.Overview)
		if overview == "" {
			continue
		}
		formatted = append(formatted, formatRecommendation(details, overview))
	}

	if len(formatted) == 0 {
		return "", nil
	}
	return fmt.Sprintf("【%s】を見た人がよく見ている映画：\n%s", title, strings.Join(formatted, "\n\n")), nil
}

func formatRecommendation(m tmdbMovie, overview string) string {
	title := m.Title
	if title == "" {
		title = "タイトル不明"
	}
	release := m.ReleaseDate
	if release == "" {
		release = "日付不明"
	}
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return fmt.Sprintf("- %s（%s）\n  ジャンル: %s\n  %s", title, release, strings.Join(names, ", "), overview)
}

// searchMovieID returns the first search hit, or 0 when TMDb knows no such title
func (e *Executor) searchMovieID(ctx context.Context, title string) (int, error) {
	var page tmdbPage
	if err := e.tmdbGet(ctx, "/search/movie", url.Values{"query": {title}}, &page); err != nil {
		return 0, err
	}
	if len(page.Results) == 0 {
		return 0, nil
	}
	return page.Results[0].ID, nil
}

func (e *Executor) tmdbGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	base, err := url.Parse(e.cfg.TMDbURL)
	if err != nil {
		return apperrors.NewToolFailed(string(KindSeenRecommendations), "invalid base URL", err)
	}
	target := base.JoinPath(path)

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", e.cfg.TMDbAPIKey)
	query.Set("language", e.cfg.TMDbLanguage)
	target.RawQuery = query.Encode()

	req, err := newRequest(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return apperrors.NewToolFailed(string(KindSeenRecommendations), "request failed", redactQuery(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewToolFailed(string(KindSeenRecommendations), "HTTP "+strconv.Itoa(resp.StatusCode)+" for "+path, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewToolFailed(string(KindSeenRecommendations), "invalid response body", err)
	}
	return nil
}

// redactQuery drops the query string, which carries api_key, from transport errors
func redactQuery(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := "(redacted)"
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		redacted = u.String()
	}
	return &url.Error{Op: uerr.Op, URL: redacted, Err: uerr.Err}
}
