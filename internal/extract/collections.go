package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seerhq/seer/internal/model"
)

// maxCollectionItems caps each detected collection so one pathological
// page cannot bloat the metadata.
const maxCollectionItems = 50

// extractNavigation collects the links of the primary navigation
// region: nav elements first, then [role=navigation], then header
// links as a last resort.
func extractNavigation(doc *goquery.Document, pageURL *url.URL) []model.NavItem {
	regions := []string{"nav", "[role=navigation]", "header"}

	for _, region := range regions {
		items := navLinks(doc.Find(region).First(), pageURL)
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// navLinks extracts text+URL pairs from the anchors of a region.
func navLinks(region *goquery.Selection, pageURL *url.URL) []model.NavItem {
	var items []model.NavItem

	region.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if len(items) >= maxCollectionItems {
			return
		}

		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if text == "" || href == "" || skipHref(href) {
			return
		}

		abs := resolveURL(pageURL, href)
		if abs == "" {
			return
		}

		items = append(items, model.NavItem{Text: text, URL: abs})
	})

	return items
}

// courseSelector matches containers whose class names suggest course
// or program cards.
const courseSelector = `[class*="course"], [class*="program"], [class*="curriculum"]`

// extractCourses detects course listings: class-name patterned cards
// carrying a heading or titled link.
func extractCourses(doc *goquery.Document, pageURL *url.URL) []model.Course {
	var courses []model.Course
	seen := make(map[string]bool)

	doc.Find(courseSelector).Each(func(_ int, s *goquery.Selection) {
		if len(courses) >= maxCollectionItems {
			return
		}

		title := cardTitle(s)
		if title == "" || seen[title] {
			return
		}

		course := model.Course{Title: title}

		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			course.URL = resolveURL(pageURL, href)
		}
		if src, ok := s.Find("img[src]").First().Attr("src"); ok {
			course.Image = resolveURL(pageURL, src)
		}
		if desc := strings.TrimSpace(s.Find("p").First().Text()); desc != "" {
			course.Description = desc
		}

		seen[title] = true
		courses = append(courses, course)
	})

	return courses
}

// peopleSelector matches containers whose class names suggest team or
// staff member cards.
const peopleSelector = `[class*="team-member"], [class*="staff"], [class*="person"], [class*="profile-card"]`

// extractPeople detects team/people listings. A card must carry a
// heading (the name); role text and photo are best effort.
func extractPeople(doc *goquery.Document) []model.Person {
	var people []model.Person
	seen := make(map[string]bool)

	doc.Find(peopleSelector).Each(func(_ int, s *goquery.Selection) {
		if len(people) >= maxCollectionItems {
			return
		}

		name := cardTitle(s)
		if name == "" || seen[name] {
			return
		}

		person := model.Person{Name: name}

		role := s.Find(`[class*="role"], [class*="title"], [class*="position"]`).First()
		if text := strings.TrimSpace(role.Text()); text != "" && text != name {
			person.Role = text
		} else if text := strings.TrimSpace(s.Find("p").First().Text()); text != "" && text != name {
			person.Role = text
		}

		if src, ok := s.Find("img[src]").First().Attr("src"); ok {
			person.Image = src
		}

		seen[name] = true
		people = append(people, person)
	})

	return people
}

// pricingSelector matches containers whose class names suggest pricing
// plans or tiers.
const pricingSelector = `[class*="pricing"], [class*="price-card"], [class*="plan"]`

// priceRegex matches currency amounts like "$29", "€ 9.99", "£120".
var priceRegex = regexp.MustCompile(`[$€£]\s?\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s?(?:USD|EUR|GBP)`)

// periodRegex matches billing periods like "/month", "per year", "/mo".
var periodRegex = regexp.MustCompile(`(?i)(?:/|per\s+)(month|mo|year|yr|week|wk|day|annum)`)

// extractPricing detects pricing tables: plan cards carrying a name
// and a currency amount.
func extractPricing(doc *goquery.Document) []model.PriceEntry {
	var entries []model.PriceEntry
	seen := make(map[string]bool)

	doc.Find(pricingSelector).Each(func(_ int, s *goquery.Selection) {
		if len(entries) >= maxCollectionItems {
			return
		}

		text := s.Text()
		price := priceRegex.FindString(text)
		if price == "" {
			return
		}

		plan := cardTitle(s)
		if plan == "" || seen[plan] {
			return
		}

		entry := model.PriceEntry{Plan: plan, Price: strings.TrimSpace(price)}
		if m := periodRegex.FindStringSubmatch(text); m != nil {
			entry.Period = strings.ToLower(m[1])
		}

		seen[plan] = true
		entries = append(entries, entry)
	})

	return entries
}

// cardTitle returns the first heading text of a card, falling back to
// the first anchor text.
func cardTitle(s *goquery.Selection) string {
	if title := strings.TrimSpace(s.Find("h1, h2, h3, h4, h5, h6").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(s.Find("a").First().Text())
}
