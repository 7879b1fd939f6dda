package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/seerhq/seer/internal/model"
)

func TestKeywordAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	pages := []model.PageRecord{
		{URL: "https://example.com/", Content: "A new Ransomware strain spreads via phishing. Ransomware again."},
		{URL: "https://example.com/blog", Content: "Nothing interesting here."},
	}

	t.Run("records case-insensitive matches with counts", func(t *testing.T) {
		t.Parallel()

		a := NewKeywordAnalyzer(nil)
		if err := a.Analyze(context.Background(), pages, []string{"ransomware", "phishing", "botnet"}); err != nil {
			t.Fatalf("Analyze() returned error: %v", err)
		}

		matches := a.Matches()
		if len(matches) != 2 {
			t.Fatalf("expected 2 matches, got %d: %v", len(matches), matches)
		}
		if matches[0].Keyword != "ransomware" || matches[0].Count != 2 {
			t.Errorf("unexpected first match: %+v", matches[0])
		}
		if matches[1].Keyword != "phishing" || matches[1].URL != "https://example.com/" {
			t.Errorf("unexpected second match: %+v", matches[1])
		}
	})

	t.Run("ignores blank keywords", func(t *testing.T) {
		t.Parallel()

		a := NewKeywordAnalyzer(nil)
		if err := a.Analyze(context.Background(), pages, []string{"", "  "}); err != nil {
			t.Fatalf("Analyze() returned error: %v", err)
		}
		if len(a.Matches()) != 0 {
			t.Errorf("expected no matches, got %v", a.Matches())
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := NewKeywordAnalyzer(nil)
		err := a.Analyze(ctx, pages, []string{"ransomware"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("matches slice is a copy", func(t *testing.T) {
		t.Parallel()

		a := NewKeywordAnalyzer(nil)
		if err := a.Analyze(context.Background(), pages, []string{"phishing"}); err != nil {
			t.Fatalf("Analyze() returned error: %v", err)
		}

		got := a.Matches()
		got[0].Keyword = "mutated"
		if a.Matches()[0].Keyword != "phishing" {
			t.Error("expected internal matches to be unaffected by caller mutation")
		}
	})
}
