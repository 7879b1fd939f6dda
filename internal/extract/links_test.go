package extract

import (
	"net/url"
	"strings"
	"testing"
)

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	base := mustURL(t, "https://example.com/start")

	doc := parseDoc(t, `<html><body>
		<nav><a href="/nav-first">Nav</a></nav>
		<a href="/page-one">One</a>
		<a href="page-two">Relative</a>
		<a href="/page-one#section">Fragment duplicate</a>
		<a href="https://example.com/page-three?id=1">Query</a>
		<a href="https://www.example.com/www-host">WWW host</a>
		<a href="https://other.com/external">External</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="tel:+15551234567">Phone</a>
		<a href="javascript:void(0)">JS</a>
		<a href="#top">Anchor</a>
	</body></html>`)

	links := ExtractLinks(doc, base)

	t.Run("same-domain links only", func(t *testing.T) {
		for _, link := range links {
			u, err := url.Parse(link)
			if err != nil {
				t.Fatalf("unparseable link %q: %v", link, err)
			}
			if !SameDomain(base, u) {
				t.Errorf("link %q is off-domain", link)
			}
		}
	})

	t.Run("non-dereferenceable targets are dropped", func(t *testing.T) {
		for _, link := range links {
			for _, bad := range []string{"mailto:", "tel:", "javascript:"} {
				if strings.HasPrefix(link, bad) {
					t.Errorf("link %q uses a skipped scheme", link)
				}
			}
		}
	})

	t.Run("fragments are stripped and deduplicated", func(t *testing.T) {
		count := 0
		for _, link := range links {
			if strings.Contains(link, "#") {
				t.Errorf("link %q retains a fragment", link)
			}
			if link == "https://example.com/page-one" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("page-one appears %d times, want 1", count)
		}
	})

	t.Run("relative links are resolved", func(t *testing.T) {
		found := false
		for _, link := range links {
			if link == "https://example.com/page-two" {
				found = true
			}
		}
		if !found {
			t.Errorf("links = %v, want resolved relative link page-two", links)
		}
	})

	t.Run("www and bare host are the same domain", func(t *testing.T) {
		found := false
		for _, link := range links {
			if strings.Contains(link, "www-host") {
				found = true
			}
		}
		if !found {
			t.Errorf("links = %v, want the www-host link retained", links)
		}
	})

	t.Run("navigation links come first", func(t *testing.T) {
		if len(links) == 0 || links[0] != "https://example.com/nav-first" {
			t.Errorf("links[0] = %v, want the nav link first", links)
		}
	})

	t.Run("query strings survive", func(t *testing.T) {
		found := false
		for _, link := range links {
			if link == "https://example.com/page-three?id=1" {
				found = true
			}
		}
		if !found {
			t.Errorf("links = %v, want page-three with its query", links)
		}
	})
}
