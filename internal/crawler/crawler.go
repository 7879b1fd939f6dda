package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/seerhq/seer/internal/extract"
	"github.com/seerhq/seer/internal/fetch"
	"github.com/seerhq/seer/internal/model"
)

// Crawler performs depth- and page-bounded site traversal. All crawl
// state (frontier, visited set, results) lives in the Crawl call, so a
// single Crawler is safe to reuse across sequential crawls.
type Crawler struct {
	// fetcher retrieves pages. Plain HTTP or headless-render,
	// selected by the caller.
	fetcher fetch.Fetcher

	// locator isolates the main content region of each page.
	locator *extract.Locator

	// converter renders the content region as markdown.
	converter *extract.Converter

	// extractor gathers page metadata.
	extractor *extract.Extractor

	// limiter paces requests toward the target host.
	limiter *rate.Limiter

	// respectRobots gates URLs through the site's robots.txt.
	respectRobots bool

	// ignorePatterns are URL path patterns whose links are skipped.
	ignorePatterns []string

	// followPatterns restrict followed links to matching paths.
	// Empty means all paths are allowed (subject to ignorePatterns).
	followPatterns []string

	// mode is recorded in run metadata ("http" or "headless").
	mode string

	// logger reports per-page failures and traversal progress.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDelay sets the politeness delay between consecutive fetches of
// one crawl. Zero or negative disables pacing.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithRespectRobots enables robots.txt checks before fetching each URL.
func WithRespectRobots(respect bool) Option {
	return func(c *Crawler) {
		c.respectRobots = respect
	}
}

// WithIgnorePatterns sets URL path patterns to skip when following
// links. Patterns use glob syntax, e.g. "/admin/*" or "*.pdf".
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithFollowPatterns restricts followed links to matching URL paths.
// Patterns use glob syntax; the seed page is always crawled.
func WithFollowPatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.followPatterns = patterns
	}
}

// WithMode records the fetch mode in the crawl's run metadata.
func WithMode(mode string) Option {
	return func(c *Crawler) {
		c.mode = mode
	}
}

// WithMinContentLength sets the content locator's minimum text length.
func WithMinContentLength(n int) Option {
	return func(c *Crawler) {
		c.locator = extract.NewLocator(extract.WithMinContentLength(n))
	}
}

// WithLogger sets the crawler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
		c.extractor = extract.NewExtractor(logger)
	}
}

// New creates a Crawler using the given fetcher. Defaults: one-second
// politeness delay, robots.txt ignored, "http" mode.
func New(fetcher fetch.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   fetcher,
		locator:   extract.NewLocator(),
		converter: extract.NewConverter(),
		extractor: extract.NewExtractor(nil),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		mode:      "http",
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// frontierItem is one entry of the traversal stack.
type frontierItem struct {
	url   string
	depth int
}

// Crawl traverses the site rooted at params.SeedURL and returns the
// assembled result. It never returns an error: parameter problems and
// unrecoverable conditions surface as the result's status and message,
// and context expiry yields a timeout status carrying the pages
// collected so far.
//
// Traversal is depth-first: a page's children are pushed onto the
// frontier stack in reverse document order, so they are explored in
// document order before the page's siblings. Deduplication happens at
// dequeue time only; a URL may sit on the frontier more than once but
// is fetched at most once.
func (c *Crawler) Crawl(ctx context.Context, params model.CrawlParameters) model.CrawlResult {
	started := time.Now()

	result := model.CrawlResult{
		URL: params.SeedURL,
		Metadata: model.RunMetadata{
			StartedAt: started.UTC(),
			MaxDepth:  params.MaxDepth,
			MaxPages:  params.MaxPages,
			Mode:      c.mode,
			Keywords:  params.Keywords,
		},
	}

	if err := params.Validate(); err != nil {
		result.Status = model.StatusError
		result.Message = fmt.Sprintf("invalid crawl parameters: %v", err)
		result.Metadata.ElapsedSeconds = time.Since(started).Seconds()
		return result
	}

	seed, err := url.Parse(params.SeedURL)
	if err != nil {
		result.Status = model.StatusError
		result.Message = fmt.Sprintf("invalid seed URL: %v", err)
		result.Metadata.ElapsedSeconds = time.Since(started).Seconds()
		return result
	}

	var robots robotsGate
	if c.respectRobots {
		robots = c.loadRobots(ctx, seed)
	}

	visited := make(map[string]bool)
	recorded := make(map[string]bool)
	var failed []string
	timedOut := false

	frontier := []frontierItem{{url: seed.String(), depth: 0}}

	for len(frontier) > 0 && len(result.Results) < params.MaxPages {
		if ctx.Err() != nil {
			timedOut = true
			break
		}

		item := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if visited[item.url] || item.depth > params.MaxDepth {
			continue
		}
		visited[item.url] = true

		if robots != nil && !robots.allowed(item.url) {
			c.logger.Debug("skipping robots-disallowed URL", "url", item.url)
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			timedOut = true
			break
		}

		page, links, err := c.crawlPage(ctx, seed, item)
		if err != nil {
			failed = append(failed, item.url)
			c.logger.Warn("page fetch failed", "url", item.url, "error", err)
			if ctx.Err() != nil {
				timedOut = true
				break
			}
			continue
		}

		// Redirects can land on an already-recorded page.
		if recorded[page.URL] {
			continue
		}
		recorded[page.URL] = true
		visited[page.URL] = true

		result.Results = append(result.Results, *page)

		if item.depth < params.MaxDepth {
			for i := len(links) - 1; i >= 0; i-- {
				if !c.shouldFollow(links[i]) {
					continue
				}
				frontier = append(frontier, frontierItem{url: links[i], depth: item.depth + 1})
			}
		}
	}

	result.PagesCrawled = len(result.Results)
	result.Metadata.FailedURLs = failed
	result.Metadata.ElapsedSeconds = time.Since(started).Seconds()

	switch {
	case timedOut:
		result.Status = model.StatusTimeout
		result.Message = fmt.Sprintf("crawl timed out after %d pages", result.PagesCrawled)
	case result.PagesCrawled == 0:
		result.Status = model.StatusError
		result.Message = "no pages could be fetched"
	default:
		result.Status = model.StatusSuccess
		result.Message = fmt.Sprintf("crawled %d pages", result.PagesCrawled)
	}

	return result
}

// crawlPage fetches one URL and builds its page record plus the
// same-domain links discovered on it.
func (c *Crawler) crawlPage(ctx context.Context, seed *url.URL, item frontierItem) (*model.PageRecord, []string, error) {
	resp, err := c.fetcher.Fetch(ctx, item.url)
	if err != nil {
		return nil, nil, err
	}

	pageURL, err := url.Parse(resp.URL)
	if err != nil {
		pageURL = seed
	}

	// Non-HTML responses are recorded as-is with no link extraction.
	if !strings.Contains(resp.ContentType, "text/html") && resp.ContentType != "" {
		return &model.PageRecord{
			URL:         resp.URL,
			Content:     string(resp.Body),
			ContentType: resp.ContentType,
			Depth:       item.depth,
			Metadata: model.PageMetadata{
				Domain:     pageURL.Hostname(),
				Path:       pageURL.EscapedPath(),
				Language:   "en",
				TextLength: len(resp.Body),
				PageType:   extract.PageTypeContent,
				FetchedAt:  time.Now().UTC(),
			},
		}, nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := c.converter.Convert(c.locator.Locate(doc))
	meta := c.extractor.Extract(doc, pageURL)
	meta.PageType = extract.Classify(pageURL, content)

	links := extract.ExtractLinks(doc, pageURL)

	// A redirect may have moved the page off the seed domain; links
	// must stay on the seed's domain regardless.
	if !extract.SameDomain(seed, pageURL) {
		filtered := links[:0]
		for _, link := range links {
			if u, err := url.Parse(link); err == nil && extract.SameDomain(seed, u) {
				filtered = append(filtered, link)
			}
		}
		links = filtered
	}

	record := &model.PageRecord{
		URL:         resp.URL,
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Content:     content,
		ContentType: "text/markdown",
		Depth:       item.depth,
		Metadata:    meta,
	}

	return record, links, nil
}
