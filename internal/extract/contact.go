package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/seerhq/seer/internal/model"
)

var (
	// emailRegex matches common email address shapes in page text.
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// phoneRegex matches international or local phone numbers with at
	// least nine digits' worth of characters, allowing separators.
	phoneRegex = regexp.MustCompile(`\+?\d[\d\-\s().]{7,}\d`)
)

// socialPlatforms maps platform keys to URL patterns that identify a
// profile or channel link on that platform.
var socialPlatforms = map[string]*regexp.Regexp{
	"twitter":   regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:twitter\.com|x\.com)/[A-Za-z0-9_]{1,15}(?:/|$|\?)`),
	"facebook":  regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:facebook\.com|fb\.com)/[A-Za-z0-9.]+`),
	"instagram": regexp.MustCompile(`(?i)^https?://(?:www\.)?instagram\.com/[A-Za-z0-9_.]+`),
	"linkedin":  regexp.MustCompile(`(?i)^https?://(?:www\.)?linkedin\.com/(?:in|company)/[A-Za-z0-9_-]+`),
	"github":    regexp.MustCompile(`(?i)^https?://(?:www\.)?github\.com/[A-Za-z0-9_-]+`),
	"youtube":   regexp.MustCompile(`(?i)^https?://(?:www\.)?youtube\.com/(?:channel|c|user|@)`),
	"telegram":  regexp.MustCompile(`(?i)^https?://(?:www\.)?t\.me/[A-Za-z0-9_]+`),
	"discord":   regexp.MustCompile(`(?i)^https?://(?:www\.)?discord\.(?:gg|com/invite)/[A-Za-z0-9-]+`),
	"reddit":    regexp.MustCompile(`(?i)^https?://(?:www\.)?reddit\.com/(?:r|u|user)/[A-Za-z0-9_-]+`),
	"tiktok":    regexp.MustCompile(`(?i)^https?://(?:www\.)?tiktok\.com/@[A-Za-z0-9_.]+`),
}

// titleCaser renders platform keys as display names (e.g. "Twitter").
var titleCaser = cases.Title(language.English)

// extractContactInfo gathers emails, phone numbers, social profile
// links, and contact-form presence. Returns nil when nothing was found.
func extractContactInfo(doc *goquery.Document) *model.ContactInfo {
	info := model.ContactInfo{
		Social: detectSocialLinks(doc),
	}

	text := doc.Find("body").Text()

	// mailto: targets are the most reliable email source; body text
	// fills in the rest. Addresses are lowercased so casing variants of
	// the same mailbox dedupe.
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if emailRegex.MatchString(addr) {
			info.Emails = appendUnique(info.Emails, strings.ToLower(addr))
		}
	})
	for _, addr := range emailRegex.FindAllString(text, -1) {
		info.Emails = appendUnique(info.Emails, strings.ToLower(addr))
	}

	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		number := strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		if number != "" {
			info.Phones = appendUnique(info.Phones, number)
		}
	})
	for _, number := range phoneRegex.FindAllString(text, -1) {
		if digitCount(number) >= 8 {
			info.Phones = appendUnique(info.Phones, strings.TrimSpace(number))
		}
	}

	info.HasContactForm = hasContactForm(doc)

	if len(info.Emails) == 0 && len(info.Phones) == 0 && len(info.Social) == 0 && !info.HasContactForm {
		return nil
	}
	return &info
}

// detectSocialLinks scans anchors for social platform profile URLs.
// The first match per platform wins; keys are display names.
func detectSocialLinks(doc *goquery.Document) map[string]string {
	var social map[string]string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		for platform, pattern := range socialPlatforms {
			if !pattern.MatchString(href) {
				continue
			}
			name := titleCaser.String(platform)
			if social == nil {
				social = make(map[string]string)
			}
			if _, seen := social[name]; !seen {
				social[name] = href
			}
		}
	})

	return social
}

// hasContactForm reports whether the page carries a form that looks
// like a contact form: either a form inside a contact-labeled region,
// or a form with both an email-like input and a free-text area.
func hasContactForm(doc *goquery.Document) bool {
	found := false

	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		if selectionHint(form, "contact") {
			found = true
			return false
		}

		hasEmail := form.Find(`input[type="email"], input[name*="email"]`).Length() > 0
		hasMessage := form.Find(`textarea, input[name*="message"]`).Length() > 0
		if hasEmail && hasMessage {
			found = true
			return false
		}

		return true
	})

	return found
}

// selectionHint reports whether the selection's id, class, action, or
// name attribute contains the given hint word.
func selectionHint(s *goquery.Selection, hint string) bool {
	for _, attr := range []string{"id", "class", "action", "name"} {
		if value, ok := s.Attr(attr); ok && strings.Contains(strings.ToLower(value), hint) {
			return true
		}
	}
	return false
}

// appendUnique appends value to list unless already present.
func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// digitCount counts the decimal digits in s.
func digitCount(s string) int {
	n := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n++
		}
	}
	return n
}
