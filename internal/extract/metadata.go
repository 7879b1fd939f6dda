package extract

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seerhq/seer/internal/model"
)

// Extractor gathers page metadata through independent sub-extractors.
// Each sub-extractor runs isolated: a panic or failure in one leaves
// its field empty and never affects the others or the page itself.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger falls back to the
// default slog logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs every sub-extractor over the document and assembles the
// page metadata. pageURL is used for domain/path fields and for
// resolving relative references to absolute URLs.
func (e *Extractor) Extract(doc *goquery.Document, pageURL *url.URL) model.PageMetadata {
	meta := model.PageMetadata{
		Domain:    pageURL.Hostname(),
		Path:      pageURL.EscapedPath(),
		Language:  "en",
		FetchedAt: time.Now().UTC(),
	}

	e.runSafe("language", func() {
		if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
			meta.Language = lang
		}
	})

	e.runSafe("text counts", func() {
		text := strings.TrimSpace(doc.Find("body").Text())
		meta.TextLength = len(text)
		meta.WordCount = len(strings.Fields(text))
	})

	e.runSafe("meta tags", func() { meta.MetaTags = extractMetaTags(doc) })
	e.runSafe("open graph", func() { meta.OpenGraph = filterPrefixed(meta.MetaTags, "og:") })
	e.runSafe("twitter card", func() { meta.TwitterCard = filterPrefixed(meta.MetaTags, "twitter:") })
	e.runSafe("headings", func() { meta.Headings = extractHeadings(doc) })
	e.runSafe("images", func() { meta.Images = extractImages(doc, pageURL) })
	e.runSafe("links", func() { meta.Links = extractLinkInventory(doc, pageURL) })
	e.runSafe("structured data", func() { meta.StructuredData = extractStructuredData(doc) })
	e.runSafe("contact info", func() { meta.ContactInfo = extractContactInfo(doc) })
	e.runSafe("navigation", func() { meta.Navigation = extractNavigation(doc, pageURL) })
	e.runSafe("courses", func() { meta.Courses = extractCourses(doc, pageURL) })
	e.runSafe("people", func() { meta.People = extractPeople(doc) })
	e.runSafe("pricing", func() { meta.Pricing = extractPricing(doc) })

	return meta
}

// runSafe executes a sub-extractor, recovering from panics so a single
// malformed document region cannot fail the whole page.
func (e *Extractor) runSafe(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("metadata sub-extractor failed", "extractor", name, "panic", r)
		}
	}()
	fn()
}

// extractMetaTags builds a name/property to content map from all meta
// elements. property wins over name when both are present.
func extractMetaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}

		key, ok := s.Attr("property")
		if !ok || key == "" {
			key, ok = s.Attr("name")
		}
		if !ok || key == "" {
			return
		}

		tags[strings.ToLower(key)] = content
	})

	if len(tags) == 0 {
		return nil
	}
	return tags
}

// filterPrefixed returns the entries of tags whose key starts with the
// prefix, or nil when there are none.
func filterPrefixed(tags map[string]string, prefix string) map[string]string {
	var out map[string]string
	for key, value := range tags {
		if strings.HasPrefix(key, prefix) {
			if out == nil {
				out = make(map[string]string)
			}
			out[key] = value
		}
	}
	return out
}

// extractHeadings returns h1-h6 headings in document order.
func extractHeadings(doc *goquery.Document) []model.Heading {
	var headings []model.Heading

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		node := s.Get(0)
		headings = append(headings, model.Heading{
			Level: int(node.Data[1] - '0'),
			Text:  text,
		})
	})

	return headings
}

// extractImages inventories img elements with absolute URLs.
func extractImages(doc *goquery.Document, pageURL *url.URL) []model.Image {
	var images []model.Image

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src == "" {
			return
		}

		abs := resolveURL(pageURL, src)
		if abs == "" {
			return
		}

		alt, _ := s.Attr("alt")
		width, _ := s.Attr("width")
		height, _ := s.Attr("height")

		images = append(images, model.Image{
			URL:    abs,
			Alt:    alt,
			Width:  width,
			Height: height,
		})
	})

	return images
}

// extractLinkInventory lists every anchor on the page with its text,
// resolved to absolute URLs. This is the metadata inventory; traversal
// filtering is done separately by ExtractLinks.
func extractLinkInventory(doc *goquery.Document, pageURL *url.URL) []model.Link {
	var links []model.Link

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || skipHref(href) {
			return
		}

		abs := resolveURL(pageURL, href)
		if abs == "" {
			return
		}

		links = append(links, model.Link{
			URL:  abs,
			Text: strings.TrimSpace(s.Text()),
		})
	})

	return links
}

// extractStructuredData parses JSON-LD blocks. Both single objects and
// arrays of objects are accepted; malformed blocks are skipped.
func extractStructuredData(doc *goquery.Document) []map[string]any {
	var blocks []map[string]any

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var single map[string]any
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			blocks = append(blocks, single)
			return
		}

		var many []map[string]any
		if err := json.Unmarshal([]byte(raw), &many); err == nil {
			blocks = append(blocks, many...)
		}
	})

	return blocks
}

// resolveURL resolves ref against base and returns the absolute URL,
// or "" when ref cannot be parsed.
func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
