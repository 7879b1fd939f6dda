package model

import "time"

// PageRecord represents one crawled web page with its converted content
// and extracted metadata. A PageRecord is created once per successfully
// fetched page and is immutable after creation; it is owned exclusively
// by the CrawlResult that contains it.
type PageRecord struct {
	// URL is the normalized URL the page was fetched from.
	URL string `json:"url"`

	// Title is the page title from the <title> tag.
	// Empty when the page has no title.
	Title string `json:"title"`

	// Content is the markdown rendering of the page's main content region.
	// Never empty: extraction falls back to a placeholder when the page
	// yields no usable text.
	Content string `json:"content"`

	// ContentType is the MIME type tag of the stored content.
	// Always "text/markdown" for HTML pages converted by the crawler.
	ContentType string `json:"content_type"`

	// Depth is the number of link hops from the seed URL.
	// The seed page has depth 0. Never exceeds the crawl's depth budget.
	Depth int `json:"depth"`

	// Metadata holds all multi-aspect metadata extracted from the page.
	Metadata PageMetadata `json:"metadata"`
}

// PageMetadata holds the output of all metadata sub-extractors for one page.
// Every field except Domain, Path, and FetchedAt is optional: a failed
// sub-extractor degrades its field to empty/absent rather than failing
// the page.
type PageMetadata struct {
	// Domain is the hostname of the page URL.
	Domain string `json:"domain"`

	// Path is the URL path of the page ("/" for the root).
	Path string `json:"path"`

	// Language is the declared page language (html lang attribute or
	// og:locale), normalized to a BCP 47 tag where possible.
	Language string `json:"language,omitempty"`

	// WordCount is the number of whitespace-separated words in the
	// extracted main content.
	WordCount int `json:"word_count"`

	// TextLength is the character count of the extracted main content.
	TextLength int `json:"text_length"`

	// Headings lists h1-h6 elements in document order.
	Headings []Heading `json:"headings,omitempty"`

	// Images is the page's image inventory with absolute URLs.
	Images []Image `json:"images,omitempty"`

	// Links lists same-page anchors with resolved absolute URLs.
	Links []Link `json:"links,omitempty"`

	// MetaTags maps meta tag name/property to content.
	MetaTags map[string]string `json:"meta_tags,omitempty"`

	// OpenGraph maps og:* properties to their content.
	OpenGraph map[string]string `json:"open_graph,omitempty"`

	// TwitterCard maps twitter:* names to their content.
	TwitterCard map[string]string `json:"twitter_card,omitempty"`

	// StructuredData contains embedded JSON-LD blocks, one entry per
	// successfully parsed <script type="application/ld+json"> element.
	StructuredData []map[string]any `json:"structured_data,omitempty"`

	// ContactInfo holds emails, phone numbers, social links, and
	// contact-form presence detected on the page.
	ContactInfo *ContactInfo `json:"contact_info,omitempty"`

	// Navigation lists items from the page's primary navigation region.
	Navigation []NavItem `json:"navigation,omitempty"`

	// Courses holds course listings detected via repeated-structure
	// heuristics. Nil when the page carries no course-like collection.
	Courses []Course `json:"courses,omitempty"`

	// People holds team/people listings detected on the page.
	People []Person `json:"people,omitempty"`

	// Pricing holds pricing-table entries detected on the page.
	Pricing []PriceEntry `json:"pricing,omitempty"`

	// PageType is the heuristic page classification label
	// (e.g. "home", "article", "contact", "content").
	PageType string `json:"page_type"`

	// FetchedAt is the time the page was fetched, in UTC.
	FetchedAt time.Time `json:"fetched_at"`
}

// Heading is one h1-h6 element.
type Heading struct {
	// Level is the heading level, 1 through 6.
	Level int `json:"level"`

	// Text is the trimmed heading text.
	Text string `json:"text"`
}

// Image is one entry of the page's image inventory.
type Image struct {
	// URL is the absolute image URL, resolved against the page URL.
	URL string `json:"url"`

	// Alt is the image's alt text.
	Alt string `json:"alt,omitempty"`

	// Width is the declared width attribute, as written in the HTML.
	Width string `json:"width,omitempty"`

	// Height is the declared height attribute, as written in the HTML.
	Height string `json:"height,omitempty"`
}

// Link is one anchor found on a page.
type Link struct {
	// URL is the absolute link target.
	URL string `json:"url"`

	// Text is the trimmed anchor text.
	Text string `json:"text,omitempty"`
}

// ContactInfo aggregates contact signals found on a page.
type ContactInfo struct {
	// Emails lists unique email addresses found in the page text,
	// lowercased.
	Emails []string `json:"emails,omitempty"`

	// Phones lists phone-number-like strings found in the page text.
	Phones []string `json:"phones,omitempty"`

	// Social maps a social platform display name (e.g. "Twitter",
	// "Linkedin") to the first profile URL found for it.
	Social map[string]string `json:"social,omitempty"`

	// HasContactForm reports whether the page contains a form that
	// looks like a contact form.
	HasContactForm bool `json:"has_contact_form"`
}

// NavItem is one entry of the primary navigation region.
type NavItem struct {
	// Text is the trimmed link text.
	Text string `json:"text"`

	// URL is the absolute link target.
	URL string `json:"url"`
}

// Course is one detected course listing.
type Course struct {
	// Title is the course title, usually a card heading.
	Title string `json:"title"`

	// URL is the absolute course detail link, if any.
	URL string `json:"url,omitempty"`

	// Image is the absolute course image URL, if any.
	Image string `json:"image,omitempty"`

	// Description is a short course description, if any.
	Description string `json:"description,omitempty"`
}

// Person is one detected team/people listing.
type Person struct {
	// Name is the person's displayed name.
	Name string `json:"name"`

	// Role is the displayed role or title, if any.
	Role string `json:"role,omitempty"`

	// Image is the absolute portrait URL, if any.
	Image string `json:"image,omitempty"`
}

// PriceEntry is one detected pricing-table entry.
type PriceEntry struct {
	// Plan is the plan or tier name.
	Plan string `json:"plan"`

	// Price is the displayed price string, including currency symbol.
	Price string `json:"price"`

	// Period is the billing period, if displayed (e.g. "month").
	Period string `json:"period,omitempty"`
}
