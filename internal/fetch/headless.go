package fetch

import (
	"context"
	"net/http"

	"github.com/chromedp/chromedp"
)

// HeadlessFetcher renders pages in a headless Chrome instance before
// returning their HTML. Use it for sites that assemble their content
// with JavaScript, where a plain HTTP fetch returns an empty shell.
//
// The browser process is shared across fetches; each Fetch runs in its
// own tab. Call Close when done to shut the browser down.
type HeadlessFetcher struct {
	// browserCtx is the shared browser context. Tabs are derived from it.
	browserCtx context.Context

	// cancel tears down the browser and its allocator.
	cancel func()

	// userAgent overrides the browser default when non-empty.
	userAgent string
}

// HeadlessOption configures a HeadlessFetcher.
type HeadlessOption func(*headlessSettings)

type headlessSettings struct {
	userAgent string
}

// WithHeadlessUserAgent sets the User-Agent the browser reports.
func WithHeadlessUserAgent(ua string) HeadlessOption {
	return func(s *headlessSettings) {
		s.userAgent = ua
	}
}

// NewHeadlessFetcher starts a headless Chrome instance and returns a
// fetcher backed by it. The browser is launched lazily on the first
// Fetch call; launch failures surface there as KindNetwork errors.
func NewHeadlessFetcher(opts ...HeadlessOption) *HeadlessFetcher {
	settings := headlessSettings{
		userAgent: userAgents[0],
	}
	for _, opt := range opts {
		opt(&settings)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(settings.userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &HeadlessFetcher{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		userAgent: settings.userAgent,
	}
}

// Fetch navigates to pageURL in a fresh tab, waits for the body to be
// ready, and returns the rendered HTML. Status codes are not available
// through the rendering path, so a successful render reports 200.
func (f *HeadlessFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()

	// Respect the caller's deadline on the tab context.
	if deadline, ok := ctx.Deadline(); ok {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithDeadline(tabCtx, deadline)
		defer timeoutCancel()
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, classify(pageURL, err)
	}

	return &Response{
		URL:         pageURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Header:      http.Header{},
	}, nil
}

// Close shuts down the headless browser. It implements io.Closer so
// callers can treat the fetcher like the other closable resources.
func (f *HeadlessFetcher) Close() error {
	f.cancel()
	return nil
}
