package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/html/charset"
)

// Response holds the outcome of a successful page fetch. Body is
// decoded to UTF-8 regardless of the document's declared charset.
type Response struct {
	// URL is the final URL after following redirects.
	URL string

	// StatusCode is the HTTP status code of the final response.
	StatusCode int

	// ContentType is the Content-Type header of the response.
	ContentType string

	// Body is the response body, decoded to UTF-8 and truncated at the
	// configured maximum body size.
	Body []byte

	// Header holds the response headers.
	Header http.Header
}

// Fetcher retrieves a single page. Implementations must honor context
// cancellation and return *Error for failures so callers can classify them.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

// userAgents is the pool of browser User-Agent strings rotated across
// requests. Real desktop browser strings reduce the chance of being
// served bot-specific content.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

// acceptLanguages is the pool of Accept-Language values rotated across
// requests.
var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.5",
	"en-GB,en-US;q=0.9,en;q=0.8",
}

// HTTPFetcher fetches pages with a plain HTTP client. Each request
// carries a randomized browser-like header set.
type HTTPFetcher struct {
	// client performs the actual requests.
	client *http.Client

	// userAgent, when non-empty, overrides the rotating pool.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// cookie is a raw cookie string injected into every request.
	cookie string

	// headers are extra headers injected into every request. They take
	// precedence over the randomized defaults.
	headers map[string]string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client. Use this to route requests
// through a proxy or to control the transport in tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithUserAgent pins the User-Agent header instead of rotating through
// the built-in pool.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithCookie sets a raw cookie string (e.g. "session_id=abc123")
// attached to every request. Useful for crawling authenticated areas.
func WithCookie(cookie string) Option {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra headers attached to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults: a
// 30-second timeout, a cookie jar for session continuity, a redirect
// cap of 10, and a 5MB body limit.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = NewHTTPClient(30 * time.Second)
	}

	return f
}

// NewHTTPClient builds the default HTTP client used by HTTPFetcher.
// It enables cookies for session continuity during a crawl and fails
// requests that exceed 10 redirects so loops surface as errors instead
// of an intermediate 3xx response.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// Fetch retrieves the page at pageURL. It returns *Error on failure,
// including non-2xx/3xx responses, so callers can classify the outcome.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(pageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{URL: pageURL, Kind: KindHTTPStatus, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")

	// Decode to UTF-8 using the charset declared in the Content-Type
	// header or sniffed from the document itself.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, classify(pageURL, fmt.Errorf("failed to detect charset: %w", err))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, classify(pageURL, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Header:      resp.Header,
	}, nil
}

// setHeaders attaches a browser-like header set to the request.
// User-Agent and Accept-Language are picked from rotating pools unless
// pinned; configured per-site headers and cookie win over the defaults.
func (f *HTTPFetcher) setHeaders(req *http.Request) {
	ua := f.userAgent
	if ua == "" {
		ua = userAgents[rand.IntN(len(userAgents))]
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguages[rand.IntN(len(acceptLanguages))])
	// Accept-Encoding is left to the transport so gzip responses are
	// decompressed transparently.
	req.Header.Set("Connection", "keep-alive")

	if f.cookie != "" {
		if existing := req.Header.Get("Cookie"); existing != "" {
			req.Header.Set("Cookie", existing+"; "+f.cookie)
		} else {
			req.Header.Set("Cookie", f.cookie)
		}
	}

	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
}
