package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlaceholderContent is returned when no usable text could be located
// anywhere in the document.
const PlaceholderContent = "no content extracted"

// noiseSelector matches elements that never belong to the main content:
// scripts, styles, chrome regions, and ad-like containers.
const noiseSelector = "script, style, noscript, iframe, nav, footer, header, aside, " +
	"[class*=advert], [class*=banner], [id*=advert], [class*=cookie-], [class*=popup]"

// contentStrategy is one attempt at locating the main content region.
// Strategies run in order; the first one that yields a fragment with
// enough text wins.
type contentStrategy struct {
	name     string
	selector string
}

// contentStrategies is the priority-ordered selector cascade. Semantic
// elements first, then the content-container class/id patterns common
// across CMS themes.
var contentStrategies = []contentStrategy{
	{name: "article element", selector: "article"},
	{name: "main element", selector: "main"},
	{name: "main role", selector: "[role=main]"},
	{name: "content id", selector: "#content"},
	{name: "main id", selector: "#main"},
	{name: "content class", selector: ".content"},
	{name: "main-content class", selector: ".main-content"},
	{name: "post-content class", selector: ".post-content"},
	{name: "entry-content class", selector: ".entry-content"},
}

// Locator isolates the primary content region of a page.
type Locator struct {
	// minLength is the minimum number of text characters a candidate
	// fragment must hold to be accepted.
	minLength int
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithMinContentLength sets the minimum text length a candidate
// fragment must hold before the locator falls through to the next
// strategy.
func WithMinContentLength(n int) LocatorOption {
	return func(l *Locator) {
		l.minLength = n
	}
}

// NewLocator creates a Locator. The default minimum content length is
// 200 characters.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{minLength: 200}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the main content fragment of the document. It works
// on a detached copy of the body so the caller's document is left
// intact for metadata extraction.
//
// The cascade is: noise stripping, then the selector strategies in
// order, then the largest text-bearing block, then the whole body.
// Locate never returns nil; in the worst case it returns an empty
// body selection.
func (l *Locator) Locate(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body").Clone()
	body.Find(noiseSelector).Remove()

	for _, s := range contentStrategies {
		candidate := body.Find(s.selector).First()
		if candidate.Length() == 0 {
			continue
		}
		if textLength(candidate) >= l.minLength {
			return candidate
		}
	}

	if block := l.largestBlock(body); block != nil {
		return block
	}

	return body
}

// largestBlock returns the single div or section holding the most
// text, or nil when none passes the minimum length.
func (l *Locator) largestBlock(body *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0

	body.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		n := textLength(s)
		if n > bestLen {
			best, bestLen = s, n
		}
	})

	if best == nil || bestLen < l.minLength {
		return nil
	}
	return best
}

// textLength counts the non-whitespace-trimmed text characters of a
// selection.
func textLength(s *goquery.Selection) int {
	return len(strings.TrimSpace(s.Text()))
}
