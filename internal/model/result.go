package model

import (
	"errors"
	"net/url"
	"time"
)

// Crawl parameter validation errors.
var (
	// ErrEmptySeedURL is returned when no seed URL is provided.
	ErrEmptySeedURL = errors.New("seed URL must not be empty")

	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed
	// or has an unsupported scheme.
	ErrInvalidSeedURL = errors.New("seed URL must be a valid http or https URL")

	// ErrInvalidMaxDepth is returned when the depth budget is negative.
	ErrInvalidMaxDepth = errors.New("max depth must be zero or positive")

	// ErrInvalidMaxPages is returned when the page budget is less than one.
	ErrInvalidMaxPages = errors.New("max pages must be at least one")
)

// CrawlStatus is the terminal status of a crawl run.
type CrawlStatus string

// Crawl statuses.
const (
	// StatusSuccess indicates the frontier was exhausted or the page
	// budget was reached with at least one page fetched.
	StatusSuccess CrawlStatus = "success"

	// StatusError indicates an unrecoverable condition occurred before
	// any page was fetched (invalid parameters, no connectivity).
	StatusError CrawlStatus = "error"

	// StatusTimeout indicates the whole-crawl deadline fired.
	// Pages collected before the deadline are preserved in Results.
	StatusTimeout CrawlStatus = "timeout"
)

// CrawlParameters are the inputs of one crawl invocation.
// They are immutable for the duration of the crawl.
type CrawlParameters struct {
	// SeedURL is the starting URL. Traversal never leaves its domain.
	SeedURL string `json:"seed_url"`

	// Keywords is an optional keyword list. It is threaded through to
	// the result metadata for downstream analysis; the traversal itself
	// does not use it for filtering or prioritization.
	Keywords []string `json:"keywords,omitempty"`

	// MaxDepth is the depth budget: the maximum number of link hops
	// from the seed that will be followed. Zero means seed only.
	MaxDepth int `json:"max_depth"`

	// MaxPages is the page budget: the maximum number of pages fetched
	// in this crawl. Must be at least one.
	MaxPages int `json:"max_pages"`
}

// Validate checks the parameters and returns the first problem found.
func (p CrawlParameters) Validate() error {
	if p.SeedURL == "" {
		return ErrEmptySeedURL
	}
	u, err := url.Parse(p.SeedURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSeedURL
	}
	if p.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if p.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	return nil
}

// RunMetadata carries run-level information about a completed crawl.
type RunMetadata struct {
	// StartedAt is the crawl start time, in UTC.
	StartedAt time.Time `json:"started_at"`

	// ElapsedSeconds is the wall-clock duration of the crawl.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// MaxDepth is the depth budget the crawl ran with.
	MaxDepth int `json:"max_depth"`

	// MaxPages is the page budget the crawl ran with.
	MaxPages int `json:"max_pages"`

	// Mode is the fetch mode used ("http" or "headless").
	Mode string `json:"mode"`

	// Keywords is the keyword list the crawl was invoked with.
	Keywords []string `json:"keywords,omitempty"`

	// FailedURLs lists URLs whose fetch failed during the crawl.
	// These pages do not appear in Results; the list exists for
	// run-level diagnostics only.
	FailedURLs []string `json:"failed_urls,omitempty"`
}

// CrawlResult is the aggregate outcome of one crawl.
// It is created once at the end of a crawl and consumed by the caller.
//
// Invariants: len(Results) never exceeds the page budget, every
// Results[i].URL is unique within the slice, and no record's Depth
// exceeds the depth budget.
type CrawlResult struct {
	// Status is the terminal status of the crawl.
	Status CrawlStatus `json:"status"`

	// Message is a human-readable summary or error description.
	Message string `json:"message"`

	// URL is the original seed URL the crawl was requested for.
	URL string `json:"url"`

	// PagesCrawled is the number of pages in Results.
	PagesCrawled int `json:"pages_crawled"`

	// Results holds the crawled pages in traversal order.
	Results []PageRecord `json:"results"`

	// Metadata carries run-level information.
	Metadata RunMetadata `json:"metadata"`
}
