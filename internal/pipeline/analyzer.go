package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/seerhq/seer/internal/model"
)

// KeywordMatch records one keyword occurrence on a crawled page.
type KeywordMatch struct {
	// URL is the page the keyword was found on.
	URL string `json:"url"`

	// Keyword is the matched keyword.
	Keyword string `json:"keyword"`

	// Count is the number of occurrences on the page.
	Count int `json:"count"`
}

// KeywordAnalyzer is an Analyzer that scans page content for the crawl's
// keyword list. Matching is case-insensitive substring search over the
// markdown content; a dedicated NLP stage can replace this implementation
// behind the same interface.
type KeywordAnalyzer struct {
	logger *slog.Logger

	mu      sync.Mutex
	matches []KeywordMatch
}

// NewKeywordAnalyzer creates a KeywordAnalyzer logging to logger.
// A nil logger falls back to slog.Default().
func NewKeywordAnalyzer(logger *slog.Logger) *KeywordAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordAnalyzer{logger: logger}
}

// Analyze scans every page for every keyword and records the matches.
// It is safe for concurrent use by multiple jobs.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, pages []model.PageRecord, keywords []string) error {
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		content := strings.ToLower(page.Content)
		for _, keyword := range keywords {
			kw := strings.ToLower(strings.TrimSpace(keyword))
			if kw == "" {
				continue
			}
			count := strings.Count(content, kw)
			if count == 0 {
				continue
			}

			a.mu.Lock()
			a.matches = append(a.matches, KeywordMatch{
				URL:     page.URL,
				Keyword: keyword,
				Count:   count,
			})
			a.mu.Unlock()

			a.logger.Info("keyword match",
				"url", page.URL,
				"keyword", keyword,
				"count", count,
			)
		}
	}

	return nil
}

// Matches returns a copy of all matches recorded so far.
func (a *KeywordAnalyzer) Matches() []KeywordMatch {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]KeywordMatch, len(a.matches))
	copy(out, a.matches)
	return out
}
