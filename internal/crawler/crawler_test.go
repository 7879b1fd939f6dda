package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seerhq/seer/internal/fetch"
	"github.com/seerhq/seer/internal/model"
)

// fetcherFunc adapts a function to the fetch.Fetcher interface.
type fetcherFunc func(ctx context.Context, pageURL string) (*fetch.Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, pageURL string) (*fetch.Response, error) {
	return f(ctx, pageURL)
}

// newTestSite serves a small site:
//
//	/         -> links to /a and /b
//	/a        -> links to /a1
//	/a1, /b   -> leaf pages
//	/loop     -> links to itself and /
//	/missing  -> 404
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	page := func(title, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>" + title + "</title></head><body>" + body + "</body></html>"))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/{$}", page("Home", `<p>welcome</p><a href="/a">A</a><a href="/b">B</a>`))
	mux.Handle("/a", page("A", `<p>page a</p><a href="/a1">A1</a>`))
	mux.Handle("/a1", page("A1", `<p>leaf a1</p>`))
	mux.Handle("/b", page("B", `<p>leaf b</p>`))
	mux.Handle("/loop", page("Loop", `<a href="/loop">self</a><a href="/">home</a>`))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newTestCrawler builds a crawler against the test server with pacing
// disabled.
func newTestCrawler(server *httptest.Server, opts ...Option) *Crawler {
	fetcher := fetch.NewHTTPFetcher(fetch.WithHTTPClient(server.Client()))
	return New(fetcher, append([]Option{WithDelay(0)}, opts...)...)
}

func TestCrawlerCrawl(t *testing.T) {
	t.Parallel()

	t.Run("max pages of one yields exactly the seed", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 3,
			MaxPages: 1,
		})

		if result.Status != model.StatusSuccess {
			t.Fatalf("Status = %q (%s), want success", result.Status, result.Message)
		}
		if len(result.Results) != 1 {
			t.Fatalf("len(Results) = %d, want 1", len(result.Results))
		}
		if result.Results[0].URL != server.URL+"/" {
			t.Errorf("Results[0].URL = %q, want the seed", result.Results[0].URL)
		}
	})

	t.Run("budgets and uniqueness invariants", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		params := model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 2,
			MaxPages: 10,
		}
		result := c.Crawl(context.Background(), params)

		if len(result.Results) > params.MaxPages {
			t.Errorf("len(Results) = %d, want <= %d", len(result.Results), params.MaxPages)
		}
		if result.PagesCrawled != len(result.Results) {
			t.Errorf("PagesCrawled = %d, want %d", result.PagesCrawled, len(result.Results))
		}

		seen := make(map[string]bool)
		for _, page := range result.Results {
			if seen[page.URL] {
				t.Errorf("duplicate URL in results: %s", page.URL)
			}
			seen[page.URL] = true

			if page.Depth > params.MaxDepth {
				t.Errorf("page %s has depth %d, want <= %d", page.URL, page.Depth, params.MaxDepth)
			}
		}
	})

	t.Run("depth-first traversal explores children before siblings", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 2,
			MaxPages: 3,
		})

		want := []string{server.URL + "/", server.URL + "/a", server.URL + "/a1"}
		if len(result.Results) != len(want) {
			t.Fatalf("len(Results) = %d, want %d", len(result.Results), len(want))
		}
		for i, page := range result.Results {
			if page.URL != want[i] {
				t.Errorf("Results[%d].URL = %q, want %q", i, page.URL, want[i])
			}
		}
	})

	t.Run("failed child page does not abort the crawl", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="/missing">gone</a><a href="/ok">ok</a></body></html>`))
		})
		mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><p>still here</p></body></html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		c := newTestCrawler(server)
		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 1,
			MaxPages: 10,
		})

		if result.Status != model.StatusSuccess {
			t.Fatalf("Status = %q (%s), want success despite the 404 child", result.Status, result.Message)
		}
		if len(result.Results) != 2 {
			t.Errorf("len(Results) = %d, want 2", len(result.Results))
		}

		foundFailed := false
		for _, u := range result.Metadata.FailedURLs {
			if strings.HasSuffix(u, "/missing") {
				foundFailed = true
			}
		}
		if !foundFailed {
			t.Errorf("FailedURLs = %v, want the 404 URL recorded", result.Metadata.FailedURLs)
		}
	})

	t.Run("seed fetch failure yields error status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := newTestCrawler(server)
		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 2,
			MaxPages: 10,
		})

		if result.Status != model.StatusError {
			t.Errorf("Status = %q, want error when zero pages were fetched", result.Status)
		}
		if len(result.Results) != 0 {
			t.Errorf("len(Results) = %d, want 0", len(result.Results))
		}
	})

	t.Run("leaf seed terminates regardless of depth budget", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/b",
			MaxDepth: 5,
			MaxPages: 10,
		})

		if result.Status != model.StatusSuccess {
			t.Fatalf("Status = %q (%s), want success", result.Status, result.Message)
		}
		if len(result.Results) != 1 {
			t.Errorf("len(Results) = %d, want 1", len(result.Results))
		}
	})

	t.Run("self-linking page is fetched once", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/loop",
			MaxDepth: 3,
			MaxPages: 10,
		})

		count := 0
		for _, page := range result.Results {
			if page.URL == server.URL+"/loop" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("loop page appears %d times, want 1", count)
		}
	})

	t.Run("invalid parameters yield error status", func(t *testing.T) {
		t.Parallel()

		c := New(fetcherFunc(func(_ context.Context, _ string) (*fetch.Response, error) {
			t.Fatal("fetcher must not be called for invalid parameters")
			return nil, nil
		}), WithDelay(0))

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  "",
			MaxDepth: 2,
			MaxPages: 10,
		})

		if result.Status != model.StatusError {
			t.Errorf("Status = %q, want error", result.Status)
		}
		if result.Message == "" {
			t.Error("Message is empty, want a validation explanation")
		}
	})

	t.Run("page records carry content and metadata", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		c := newTestCrawler(server)

		result := c.Crawl(context.Background(), model.CrawlParameters{
			SeedURL:  server.URL + "/",
			MaxDepth: 0,
			MaxPages: 1,
		})

		if len(result.Results) != 1 {
			t.Fatalf("len(Results) = %d, want 1", len(result.Results))
		}

		page := result.Results[0]
		if page.Title != "Home" {
			t.Errorf("Title = %q, want Home", page.Title)
		}
		if page.ContentType != "text/markdown" {
			t.Errorf("ContentType = %q, want text/markdown", page.ContentType)
		}
		if page.Content == "" {
			t.Error("Content is empty, want markdown text")
		}
		if page.Metadata.Domain == "" {
			t.Error("Metadata.Domain is empty")
		}
		if page.Metadata.PageType != "home" {
			t.Errorf("Metadata.PageType = %q, want home", page.Metadata.PageType)
		}
	})
}

func TestCrawlerTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := fetcherFunc(func(_ context.Context, pageURL string) (*fetch.Response, error) {
		if strings.HasSuffix(pageURL, "/next") {
			// Simulate the crawl deadline expiring mid-flight.
			cancel()
			return nil, &fetch.Error{URL: pageURL, Kind: fetch.KindTimeout, Err: context.DeadlineExceeded}
		}
		return &fetch.Response{
			URL:         pageURL,
			StatusCode:  http.StatusOK,
			ContentType: "text/html",
			Body:        []byte(`<html><head><title>Seed</title></head><body><a href="/next">next</a></body></html>`),
		}, nil
	})

	c := New(fetcher, WithDelay(0))
	result := c.Crawl(ctx, model.CrawlParameters{
		SeedURL:  "http://site.test/",
		MaxDepth: 2,
		MaxPages: 10,
	})

	if result.Status != model.StatusTimeout {
		t.Errorf("Status = %q, want timeout", result.Status)
	}
	if len(result.Results) != 1 {
		t.Errorf("len(Results) = %d, want the partial result preserved", len(result.Results))
	}
}

func TestCrawlerRespectsRobots(t *testing.T) {
	t.Parallel()

	var blockedFetched bool

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
	})
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><a href="/blocked">no</a><a href="/open">yes</a></body></html>`))
	})
	mux.HandleFunc("/open", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>open</p></body></html>`))
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, _ *http.Request) {
		blockedFetched = true
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>blocked</p></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestCrawler(server, WithRespectRobots(true))
	result := c.Crawl(context.Background(), model.CrawlParameters{
		SeedURL:  server.URL + "/",
		MaxDepth: 1,
		MaxPages: 10,
	})

	if result.Status != model.StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", result.Status, result.Message)
	}
	if blockedFetched {
		t.Error("robots-disallowed URL was fetched")
	}
	for _, page := range result.Results {
		if strings.HasSuffix(page.URL, "/blocked") {
			t.Error("robots-disallowed URL appears in results")
		}
	}
}
