package extract

import (
	"net/url"
	"strings"
)

// Page type labels produced by Classify.
const (
	PageTypeHome     = "home"
	PageTypeAbout    = "about"
	PageTypeContact  = "contact"
	PageTypeArticle  = "article"
	PageTypeProduct  = "product"
	PageTypeCategory = "category"
	PageTypeLegal    = "legal"
	PageTypeLogin    = "login"
	PageTypeError    = "error"
	PageTypeContent  = "content"
)

// urlRule maps URL path markers to a page type. Rules are checked in
// order; the first match wins.
type urlRule struct {
	markers []string
	label   string
}

var urlRules = []urlRule{
	{markers: []string{"about", "about-us", "who-we-are"}, label: PageTypeAbout},
	{markers: []string{"contact", "contact-us"}, label: PageTypeContact},
	{markers: []string{"blog", "article", "news", "post"}, label: PageTypeArticle},
	{markers: []string{"product", "item", "shop"}, label: PageTypeProduct},
	{markers: []string{"category", "categories", "collection"}, label: PageTypeCategory},
	{markers: []string{"privacy", "terms", "legal", "policy", "imprint"}, label: PageTypeLegal},
	{markers: []string{"login", "signin", "sign-in", "register", "signup", "sign-up"}, label: PageTypeLogin},
}

// textRule maps body text markers to a page type. All markers are
// matched against lowercased text; the first rule with any match wins.
type textRule struct {
	markers []string
	label   string
}

var textRules = []textRule{
	{markers: []string{"404", "page not found", "not found"}, label: PageTypeError},
	{markers: []string{"add to cart", "add to basket", "checkout", "in stock"}, label: PageTypeProduct},
	{markers: []string{"contact us", "get in touch", "send us a message"}, label: PageTypeContact},
	{markers: []string{"privacy policy", "terms of service", "terms and conditions"}, label: PageTypeLegal},
	{markers: []string{"log in", "sign in", "forgot password", "create an account"}, label: PageTypeLogin},
}

// Classify labels a page's type from its URL shape first, then its
// extracted text. The result is deterministic for a given input and
// defaults to the generic content label.
func Classify(pageURL *url.URL, text string) string {
	path := strings.Trim(strings.ToLower(pageURL.EscapedPath()), "/")

	if path == "" || path == "index.html" || path == "index.php" {
		return PageTypeHome
	}

	segments := strings.Split(path, "/")
	for _, rule := range urlRules {
		for _, marker := range rule.markers {
			for _, segment := range segments {
				if segment == marker || strings.HasPrefix(segment, marker+".") {
					return rule.label
				}
			}
		}
	}

	lower := strings.ToLower(text)
	for _, rule := range textRules {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				return rule.label
			}
		}
	}

	return PageTypeContent
}
