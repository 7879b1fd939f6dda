package extract

import (
	"testing"
)

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	pageURL := mustURL(t, "https://example.com/blog/post")

	doc := parseDoc(t, `<html lang="de">
	<head>
		<title>Test Page</title>
		<meta name="description" content="A test page">
		<meta property="og:title" content="OG Title">
		<meta property="og:image" content="/og.png">
		<meta name="twitter:card" content="summary">
		<script type="application/ld+json">{"@type": "Article", "headline": "LD Headline"}</script>
	</head>
	<body>
		<h1>Main Title</h1>
		<h2>Subsection</h2>
		<img src="/images/photo.jpg" alt="A photo" width="640" height="480">
		<a href="/about">About us</a>
		<p>Some body text for counting words.</p>
	</body>
	</html>`)

	meta := NewExtractor(nil).Extract(doc, pageURL)

	t.Run("domain and path", func(t *testing.T) {
		if meta.Domain != "example.com" {
			t.Errorf("Domain = %q, want example.com", meta.Domain)
		}
		if meta.Path != "/blog/post" {
			t.Errorf("Path = %q, want /blog/post", meta.Path)
		}
	})

	t.Run("language from html attribute", func(t *testing.T) {
		if meta.Language != "de" {
			t.Errorf("Language = %q, want de", meta.Language)
		}
	})

	t.Run("meta tag map", func(t *testing.T) {
		if meta.MetaTags["description"] != "A test page" {
			t.Errorf("MetaTags[description] = %q, want A test page", meta.MetaTags["description"])
		}
	})

	t.Run("open graph map", func(t *testing.T) {
		if meta.OpenGraph["og:title"] != "OG Title" {
			t.Errorf("OpenGraph[og:title] = %q, want OG Title", meta.OpenGraph["og:title"])
		}
		if _, ok := meta.OpenGraph["description"]; ok {
			t.Error("OpenGraph contains a non-og key")
		}
	})

	t.Run("twitter card map", func(t *testing.T) {
		if meta.TwitterCard["twitter:card"] != "summary" {
			t.Errorf("TwitterCard[twitter:card] = %q, want summary", meta.TwitterCard["twitter:card"])
		}
	})

	t.Run("headings in document order", func(t *testing.T) {
		if len(meta.Headings) != 2 {
			t.Fatalf("len(Headings) = %d, want 2", len(meta.Headings))
		}
		if meta.Headings[0].Level != 1 || meta.Headings[0].Text != "Main Title" {
			t.Errorf("Headings[0] = %+v, want level 1 Main Title", meta.Headings[0])
		}
		if meta.Headings[1].Level != 2 || meta.Headings[1].Text != "Subsection" {
			t.Errorf("Headings[1] = %+v, want level 2 Subsection", meta.Headings[1])
		}
	})

	t.Run("images with absolute URLs", func(t *testing.T) {
		if len(meta.Images) != 1 {
			t.Fatalf("len(Images) = %d, want 1", len(meta.Images))
		}
		img := meta.Images[0]
		if img.URL != "https://example.com/images/photo.jpg" {
			t.Errorf("Image URL = %q, want absolute", img.URL)
		}
		if img.Alt != "A photo" || img.Width != "640" || img.Height != "480" {
			t.Errorf("Image = %+v, want alt/width/height preserved", img)
		}
	})

	t.Run("link inventory with absolute URLs", func(t *testing.T) {
		if len(meta.Links) != 1 {
			t.Fatalf("len(Links) = %d, want 1", len(meta.Links))
		}
		if meta.Links[0].URL != "https://example.com/about" {
			t.Errorf("Link URL = %q, want absolute", meta.Links[0].URL)
		}
		if meta.Links[0].Text != "About us" {
			t.Errorf("Link Text = %q, want About us", meta.Links[0].Text)
		}
	})

	t.Run("structured data", func(t *testing.T) {
		if len(meta.StructuredData) != 1 {
			t.Fatalf("len(StructuredData) = %d, want 1", len(meta.StructuredData))
		}
		if meta.StructuredData[0]["headline"] != "LD Headline" {
			t.Errorf("StructuredData[0][headline] = %v, want LD Headline", meta.StructuredData[0]["headline"])
		}
	})

	t.Run("word counts", func(t *testing.T) {
		if meta.WordCount == 0 {
			t.Error("WordCount = 0, want > 0")
		}
		if meta.TextLength == 0 {
			t.Error("TextLength = 0, want > 0")
		}
	})

	t.Run("fetch timestamp set", func(t *testing.T) {
		if meta.FetchedAt.IsZero() {
			t.Error("FetchedAt is zero, want a timestamp")
		}
	})
}

func TestExtractStructuredDataVariants(t *testing.T) {
	t.Parallel()

	t.Run("array of objects", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head>
			<script type="application/ld+json">[{"@type":"A"},{"@type":"B"}]</script>
		</head><body></body></html>`)

		blocks := extractStructuredData(doc)
		if len(blocks) != 2 {
			t.Errorf("len(blocks) = %d, want 2", len(blocks))
		}
	})

	t.Run("malformed JSON is skipped", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head>
			<script type="application/ld+json">{not json</script>
			<script type="application/ld+json">{"@type":"Valid"}</script>
		</head><body></body></html>`)

		blocks := extractStructuredData(doc)
		if len(blocks) != 1 {
			t.Fatalf("len(blocks) = %d, want 1", len(blocks))
		}
		if blocks[0]["@type"] != "Valid" {
			t.Errorf("blocks[0][@type] = %v, want Valid", blocks[0]["@type"])
		}
	})
}

func TestExtractorDefaultsOnEmptyDocument(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, "<html><body></body></html>")
	meta := NewExtractor(nil).Extract(doc, mustURL(t, "https://example.com/"))

	if meta.Language != "en" {
		t.Errorf("Language = %q, want en default", meta.Language)
	}
	if meta.MetaTags != nil {
		t.Errorf("MetaTags = %v, want nil", meta.MetaTags)
	}
	if meta.ContactInfo != nil {
		t.Errorf("ContactInfo = %+v, want nil", meta.ContactInfo)
	}
}
