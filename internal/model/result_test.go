package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCrawlParametersValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params CrawlParameters
		want   error
	}{
		{
			name:   "valid parameters",
			params: CrawlParameters{SeedURL: "https://example.com", MaxDepth: 2, MaxPages: 10},
			want:   nil,
		},
		{
			name:   "empty seed URL",
			params: CrawlParameters{MaxDepth: 2, MaxPages: 10},
			want:   ErrEmptySeedURL,
		},
		{
			name:   "unsupported scheme",
			params: CrawlParameters{SeedURL: "ftp://example.com", MaxDepth: 2, MaxPages: 10},
			want:   ErrInvalidSeedURL,
		},
		{
			name:   "missing host",
			params: CrawlParameters{SeedURL: "https://", MaxDepth: 2, MaxPages: 10},
			want:   ErrInvalidSeedURL,
		},
		{
			name:   "negative depth",
			params: CrawlParameters{SeedURL: "https://example.com", MaxDepth: -1, MaxPages: 10},
			want:   ErrInvalidMaxDepth,
		},
		{
			name:   "zero pages",
			params: CrawlParameters{SeedURL: "https://example.com", MaxDepth: 2, MaxPages: 0},
			want:   ErrInvalidMaxPages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.params.Validate()
			if !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrawlResultJSONRoundTrip(t *testing.T) {
	t.Parallel()

	result := CrawlResult{
		Status:       StatusSuccess,
		Message:      "crawled 1 page",
		URL:          "https://example.com",
		PagesCrawled: 1,
		Results: []PageRecord{
			{
				URL:         "https://example.com/",
				Title:       "Example",
				Content:     "# Example\n\nHello.",
				ContentType: "text/markdown",
				Metadata: PageMetadata{
					Domain:    "example.com",
					Path:      "/",
					PageType:  "home",
					FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
					Headings:  []Heading{{Level: 1, Text: "Example"}},
				},
			},
		},
		Metadata: RunMetadata{MaxDepth: 2, MaxPages: 10, Mode: "http"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded CrawlResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if decoded.Status != StatusSuccess {
		t.Errorf("expected status %q, got %q", StatusSuccess, decoded.Status)
	}
	if len(decoded.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(decoded.Results))
	}
	if decoded.Results[0].Metadata.Domain != "example.com" {
		t.Errorf("expected domain example.com, got %q", decoded.Results[0].Metadata.Domain)
	}
	if decoded.Results[0].Metadata.Headings[0].Level != 1 {
		t.Errorf("expected heading level 1, got %d", decoded.Results[0].Metadata.Headings[0].Level)
	}
}

func TestPageMetadataOptionalFieldsOmitted(t *testing.T) {
	t.Parallel()

	meta := PageMetadata{Domain: "example.com", Path: "/", PageType: "content"}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, key := range []string{"headings", "images", "links", "open_graph", "twitter_card", "structured_data", "contact_info", "navigation", "courses", "people", "pricing"} {
		if _, ok := raw[key]; ok {
			t.Errorf("expected optional field %q to be omitted when empty", key)
		}
	}
}
