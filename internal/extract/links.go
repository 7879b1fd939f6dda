package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks collects the same-domain links of a page for traversal.
// Every href is resolved against base; anchors, mailto:, tel:, and
// javascript: targets are discarded; fragments are stripped; only
// links on the base URL's domain survive. Navigation-region links are
// surfaced first so the traversal visits site structure before body
// links, and the result contains no duplicates.
func ExtractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	collect := func(region *goquery.Selection) {
		region.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			link, ok := filterLink(base, href)
			if !ok || seen[link] {
				return
			}
			seen[link] = true
			links = append(links, link)
		})
	}

	collect(doc.Find("nav"))
	collect(doc.Selection)

	return links
}

// filterLink resolves and filters a single href. It returns the
// normalized absolute URL and whether the link qualifies for traversal.
func filterLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || skipHref(href) {
		return "", false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !SameDomain(base, resolved) {
		return "", false
	}

	resolved.Fragment = ""
	return resolved.String(), true
}

// skipHref reports whether the href is a non-dereferenceable target:
// an in-page anchor or a mailto:/tel:/javascript: scheme.
func skipHref(href string) bool {
	if strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:")
}

// SameDomain reports whether two URLs share a domain, treating the
// "www." prefix as equivalent to the bare host.
func SameDomain(a, b *url.URL) bool {
	return canonicalHost(a) == canonicalHost(b)
}

// canonicalHost lowercases the hostname and strips a leading "www.".
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
