package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Converter renders an HTML fragment as markdown text. The mapping is
// deterministic: h1-h6 become #-prefixed headings, paragraphs become
// blank-line-separated blocks, lists become */N. items, anchors become
// [text](href), and images become ![alt](src).
type Converter struct{}

// NewConverter creates a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

var (
	// multiNewline collapses runs of three or more newlines to a
	// single blank line.
	multiNewline = regexp.MustCompile(`\n{3,}`)

	// multiSpace collapses repeated spaces and tabs within a line.
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)

	// trailingSpace strips whitespace left at line ends.
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// Convert renders the selection as markdown. It returns
// PlaceholderContent when the fragment contains no usable text.
func (c *Converter) Convert(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		c.walkBlock(&b, n)
	}

	text := normalizeWhitespace(b.String())
	if text == "" {
		return PlaceholderContent
	}
	return text
}

// walkBlock emits block-level markdown for a node and its children.
func (c *Converter) walkBlock(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Loose text directly under a container becomes its own block.
		if text := collapseInline(n.Data); text != "" {
			writeBlock(b, text)
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			if text := inlineText(n); text != "" {
				writeBlock(b, strings.Repeat("#", level)+" "+text)
			}
		case "p":
			if text := inlineText(n); text != "" {
				writeBlock(b, text)
			}
		case "ul":
			c.writeList(b, n, false)
		case "ol":
			c.writeList(b, n, true)
		case "img":
			if md := imageMarkdown(n); md != "" {
				writeBlock(b, md)
			}
		case "br":
			b.WriteString("\n")
		default:
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				c.walkBlock(b, child)
			}
		}
	}
}

// writeList emits list items, one per line, as a single block.
func (c *Converter) writeList(b *strings.Builder, n *html.Node, ordered bool) {
	var items []string
	index := 0

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		text := inlineText(child)
		if text == "" {
			continue
		}
		index++
		if ordered {
			items = append(items, fmt.Sprintf("%d. %s", index, text))
		} else {
			items = append(items, "* "+text)
		}
	}

	if len(items) > 0 {
		writeBlock(b, strings.Join(items, "\n"))
	}
}

// writeBlock appends a block followed by a blank-line separator.
func writeBlock(b *strings.Builder, text string) {
	b.WriteString(text)
	b.WriteString("\n\n")
}

// inlineText renders the inline content of a node: plain text with
// anchors and images converted to markdown syntax.
func inlineText(n *html.Node) string {
	var b strings.Builder
	renderInline(&b, n)
	return collapseInline(b.String())
}

// renderInline walks inline children, converting anchors and images.
func renderInline(b *strings.Builder, n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			b.WriteString(child.Data)
		case html.ElementNode:
			switch child.Data {
			case "script", "style", "noscript":
				continue
			case "a":
				text := inlineText(child)
				href := attrValue(child, "href")
				if text == "" {
					continue
				}
				if href == "" {
					b.WriteString(text)
					continue
				}
				fmt.Fprintf(b, "[%s](%s)", text, href)
			case "img":
				b.WriteString(imageMarkdown(child))
			case "br":
				b.WriteString("\n")
			default:
				renderInline(b, child)
			}
		}
	}
}

// imageMarkdown renders an img element as ![alt](src). Images without
// a source yield an empty string.
func imageMarkdown(n *html.Node) string {
	src := attrValue(n, "src")
	if src == "" {
		src = attrValue(n, "data-src")
	}
	if src == "" {
		return ""
	}
	return fmt.Sprintf("![%s](%s)", attrValue(n, "alt"), src)
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// collapseInline trims a text run and collapses internal whitespace to
// single spaces, preserving explicit newlines from <br>.
func collapseInline(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\n ", "\n")
	return strings.TrimSpace(s)
}

// normalizeWhitespace applies the final whitespace rules: no trailing
// spaces, at most one blank line between blocks, and no leading or
// trailing blank lines.
func normalizeWhitespace(s string) string {
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
