package extract

import (
	"testing"
)

func TestExtractContactInfo(t *testing.T) {
	t.Parallel()

	t.Run("email from body text", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<html><body><p>contact: jane@example.com</p></body></html>")

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if len(info.Emails) != 1 || info.Emails[0] != "jane@example.com" {
			t.Errorf("Emails = %v, want [jane@example.com]", info.Emails)
		}
	})

	t.Run("email from mailto link without duplicates", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<a href="mailto:sales@example.com?subject=hi">Email sales</a>
			<p>Or write to sales@example.com directly.</p>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if len(info.Emails) != 1 || info.Emails[0] != "sales@example.com" {
			t.Errorf("Emails = %v, want [sales@example.com]", info.Emails)
		}
	})

	t.Run("emails are lowercased", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<a href="mailto:Jane@Example.COM">Email Jane</a>
			<p>Or write to JANE@example.com directly.</p>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if len(info.Emails) != 1 || info.Emails[0] != "jane@example.com" {
			t.Errorf("Emails = %v, want [jane@example.com]", info.Emails)
		}
	})

	t.Run("phone numbers", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<a href="tel:+1-555-123-4567">Call us</a>
			<p>Office: +44 20 7946 0958</p>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if len(info.Phones) < 2 {
			t.Errorf("Phones = %v, want the tel: link and the body number", info.Phones)
		}
	})

	t.Run("social platform links", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<a href="https://twitter.com/example">Twitter</a>
			<a href="https://github.com/example">GitHub</a>
			<a href="https://example.com/normal">Normal link</a>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if info.Social["Twitter"] != "https://twitter.com/example" {
			t.Errorf("Social[Twitter] = %q, want the profile URL", info.Social["Twitter"])
		}
		if info.Social["Github"] != "https://github.com/example" {
			t.Errorf("Social[Github] = %q, want the profile URL", info.Social["Github"])
		}
		if len(info.Social) != 2 {
			t.Errorf("Social = %v, want exactly two platforms", info.Social)
		}
	})

	t.Run("contact form by region hint", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<form action="/contact-submit"><input type="text" name="q"></form>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil || !info.HasContactForm {
			t.Error("HasContactForm = false, want true for a contact-labeled form")
		}
	})

	t.Run("contact form by field shape", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<form action="/submit">
				<input type="email" name="from">
				<textarea name="body"></textarea>
			</form>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil || !info.HasContactForm {
			t.Error("HasContactForm = false, want true for email+textarea form")
		}
	})

	t.Run("search form is not a contact form", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<p>hello@example.com</p>
			<form action="/search"><input type="text" name="q"></form>
		</body></html>`)

		info := extractContactInfo(doc)
		if info == nil {
			t.Fatal("extractContactInfo() = nil, want contact info")
		}
		if info.HasContactForm {
			t.Error("HasContactForm = true, want false for a search form")
		}
	})

	t.Run("nothing found yields nil", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "<html><body><p>no contact details here</p></body></html>")

		if info := extractContactInfo(doc); info != nil {
			t.Errorf("extractContactInfo() = %+v, want nil", info)
		}
	})
}
