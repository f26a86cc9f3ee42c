package tools

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ============================================================================
// Helper Functions for HTML Processing
// ============================================================================

// Filmarks prefixes every meta description with one of these phrases. The synopsis is whatever follows.
var synopsisBoilerplate = []string{
	"、内容・ネタバレ、あらすじ、予告編・予告動画、公開映画館情報、公開スケジュール、監督・出演者の関連映画情報",
	"件のレビュー(口コミ・感想・評価)",
}

// cleanSynopsis strips the Filmarks boilerplate from a meta description
func cleanSynopsis(description string) string {
	description = strings.TrimSpace(description)
	for _, keyword := range synopsisBoilerplate {
		if idx := strings.LastIndex(description, keyword); idx != -1 {
			description = strings.TrimSpace(description[idx+len(keyword):])
		}
	}
	return description
}

// selectionText returns the whitespace-normalized text of the first match, or fallback
func selectionText(s *goquery.Selection, selector, fallback string) string {
	text := normalizeWhitespace(s.Find(selector).First().Text())
	if text == "" {
		return fallback
	}
	return text
}

// selectionTexts returns the normalized text of every match, skipping empties
func selectionTexts(s *goquery.Selection, selector string) []string {
	var out []string
	s.Find(selector).Each(func(_ int, item *goquery.Selection) {
		if text := normalizeWhitespace(item.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
