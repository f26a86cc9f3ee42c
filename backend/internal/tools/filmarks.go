package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	apperrors "moviesalon/backend/pkg/errors"
)

// ============================================================================
// Filmarks Trend Scraping
// ============================================================================

const (
	filmarksNowPath    = "/list/now"
	filmarksComingPath = "/list/coming"
	filmarksSearchPath = "/search/movies"

	defaultFilmarksLimit = 10
)

// Per-field fallbacks when a cassette is missing markup
const (
	noTitle    = "タイトル記載なし"
	noGenre    = "ジャンル記載なし"
	noRelease  = "公開日不明"
	noScore    = "スコアなし"
	noSynopsis = "あらすじ記載なし"
)

// FilmarksMovie is one entry of a Filmarks list page
type FilmarksMovie struct {
	Title    string
	Genres   []string
	Release  string
	Score    string
	Synopsis string
}

// Format renders the movie as the numbered block shown to speakers
func (m FilmarksMovie) Format(index int) string {
	genres := noGenre
	if len(m.Genres) > 0 {
		genres = strings.Join(m.Genres, ", ")
	}
	return fmt.Sprintf("【映画%d】\nタイトル: %s\nジャンル: %s\n公開日: %s\n評価スコア: %s\nあらすじ: %s",
		index, m.Title, genres, m.Release, m.Score, m.Synopsis)
}

// fetchFilmarksList scrapes up to limit movies from a Filmarks list page
func (e *Executor) fetchFilmarksList(ctx context.Context, path string, limit int) ([]string, error) {
	movies, err := e.scrapeFilmarks(ctx, path, nil, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(movies))
	for i, m := range movies {
		out = append(out, m.Format(i+1))
	}
	return out, nil
}

// fetchGenreCatalogue searches the Filmarks catalogue by genre name
func (e *Executor) fetchGenreCatalogue(ctx context.Context, genre string, limit int) ([]string, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, apperrors.NewToolFailed(string(KindGenreCatalogue), "genre is required", nil)
	}
	movies, err := e.scrapeFilmarks(ctx, filmarksSearchPath, url.Values{"q": {genre}}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(movies))
	for i, m := range movies {
		out = append(out, m.Format(i+1))
	}
	return out, nil
}

func (e *Executor) scrapeFilmarks(ctx context.Context, path string, query url.Values, limit int) ([]FilmarksMovie, error) {
	if limit <= 0 {
		limit = defaultFilmarksLimit
	}

	base, err := url.Parse(e.cfg.FilmarksURL)
	if err != nil {
		return nil, apperrors.NewToolFailed("filmarks", "invalid base URL", err)
	}
	listURL := base.JoinPath(path)
	if query != nil {
		listURL.RawQuery = query.Encode()
	}

	doc, err := e.fetchDocument(ctx, listURL.String())
	if err != nil {
		return nil, err
	}

	var movies []FilmarksMovie
	doc.Find("div.js-cassette").EachWithBreak(func(_ int, cassette *goquery.Selection) bool {
		if len(movies) >= limit {
			return false
		}

		movie := FilmarksMovie{
			Title:    selectionText(cassette, "h3.p-content-cassette__title", noTitle),
			Genres:   selectionTexts(cassette, "ul.genres li"),
			Release:  selectionText(cassette, "div.p-content-cassette__info-main span", noRelease),
			Score:    selectionText(cassette, "div.c-rating__score", noScore),
			Synopsis: noSynopsis,
		}

		if href, ok := cassette.Find("a.p-content-cassette__readmore").First().Attr("href"); ok && href != "" {
			if detail, err := base.Parse(href); err == nil {
				movie.Synopsis = e.fetchSynopsis(ctx, detail.String())
			}
		}

		movies = append(movies, movie)
		return true
	})

	return movies, nil
}

// fetchSynopsis reads the synopsis from a detail page's meta description.
// Failures degrade to the "no synopsis" text; one bad page never fails the list.
func (e *Executor) fetchSynopsis(ctx context.Context, detailURL string) string {
	if err := e.scrapeLimiter.Wait(ctx); err != nil {
		return noSynopsis
	}

	doc, err := e.fetchDocument(ctx, detailURL)
	if err != nil {
		e.logger.Debug("Failed to fetch Filmarks detail page",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		return noSynopsis
	}

	content, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		return noSynopsis
	}
	if synopsis := cleanSynopsis(content); synopsis != "" {
		return synopsis
	}
	return noSynopsis
}

func (e *Executor) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewToolFailed("filmarks", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewToolFailed("filmarks", fmt.Sprintf("HTTP %d for %s", resp.StatusCode, target), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.NewToolFailed("filmarks", "failed to parse HTML", err)
	}
	return doc, nil
}
