package extract

import (
	"strings"
	"testing"
)

// convert parses a fragment and runs the converter over its body.
func convert(t *testing.T, html string) string {
	t.Helper()

	doc := parseDoc(t, "<html><body>"+html+"</body></html>")
	return NewConverter().Convert(doc.Find("body"))
}

func TestConverterConvert(t *testing.T) {
	t.Parallel()

	t.Run("one h2 and two paragraphs", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<h2>Section</h2><p>First paragraph.</p><p>Second paragraph.</p>")

		h2Lines := 0
		for _, line := range strings.Split(got, "\n") {
			if strings.HasPrefix(line, "##") {
				h2Lines++
			}
		}
		if h2Lines != 1 {
			t.Errorf("got %d lines starting with ##, want exactly 1\noutput:\n%s", h2Lines, got)
		}

		blocks := strings.Split(got, "\n\n")
		if len(blocks) != 3 {
			t.Errorf("got %d blocks, want 3 (heading + two paragraphs)\noutput:\n%s", len(blocks), got)
		}
	})

	t.Run("heading levels", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			html string
			want string
		}{
			{"<h1>One</h1>", "# One"},
			{"<h3>Three</h3>", "### Three"},
			{"<h6>Six</h6>", "###### Six"},
		}

		for _, tt := range tests {
			if got := convert(t, tt.html); got != tt.want {
				t.Errorf("convert(%q) = %q, want %q", tt.html, got, tt.want)
			}
		}
	})

	t.Run("anchors become links", func(t *testing.T) {
		t.Parallel()

		got := convert(t, `<p>See <a href="/docs">the docs</a> for more.</p>`)
		want := "See [the docs](/docs) for more."
		if got != want {
			t.Errorf("convert() = %q, want %q", got, want)
		}
	})

	t.Run("images become image syntax", func(t *testing.T) {
		t.Parallel()

		got := convert(t, `<img src="/logo.png" alt="Logo">`)
		want := "![Logo](/logo.png)"
		if got != want {
			t.Errorf("convert() = %q, want %q", got, want)
		}
	})

	t.Run("unordered list", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<ul><li>alpha</li><li>beta</li></ul>")
		want := "* alpha\n* beta"
		if got != want {
			t.Errorf("convert() = %q, want %q", got, want)
		}
	})

	t.Run("ordered list", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<ol><li>first</li><li>second</li></ol>")
		want := "1. first\n2. second"
		if got != want {
			t.Errorf("convert() = %q, want %q", got, want)
		}
	})

	t.Run("scripts are skipped", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<p>visible</p><script>var hidden = 1;</script>")
		if strings.Contains(got, "hidden") {
			t.Errorf("convert() = %q, want script content excluded", got)
		}
	})

	t.Run("whitespace is normalized", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<p>too     many    spaces</p>")
		if strings.Contains(got, "  ") {
			t.Errorf("convert() = %q, want repeated spaces collapsed", got)
		}
		if strings.Contains(got, "\n\n\n") {
			t.Errorf("convert() = %q, want 3+ newlines collapsed", got)
		}
	})

	t.Run("empty fragment yields placeholder", func(t *testing.T) {
		t.Parallel()

		got := convert(t, "<div></div>")
		if got != PlaceholderContent {
			t.Errorf("convert() = %q, want %q", got, PlaceholderContent)
		}
	})

	t.Run("approximately idempotent on own output", func(t *testing.T) {
		t.Parallel()

		first := convert(t, "<h2>Title</h2><p>Body text here.</p>")
		second := convert(t, first)

		if !strings.Contains(second, "## Title") {
			t.Errorf("second pass lost the heading: %q", second)
		}
		if !strings.Contains(second, "Body text here.") {
			t.Errorf("second pass lost the paragraph: %q", second)
		}
	})
}
