package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/seerhq/seer/internal/model"
)

// MarkdownWriter outputs crawl results as Markdown documents, one
// section per crawled page.
type MarkdownWriter struct {
	baseWriter

	// includeContent controls whether each page's markdown body is
	// embedded in the report. Disable for summary-only reports.
	includeContent bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithoutPageContent omits page bodies from the report, leaving only
// the per-page summaries.
func WithoutPageContent() MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.includeContent = false
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer. Page content is included by default.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:     newBaseWriter(output),
		includeContent: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full crawl report in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePages(md, result)
	w.writeFailures(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the run-level summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + result.URL + "`"},
			{"Started", result.Metadata.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", statusText(result)},
			{"Pages Crawled", strconv.Itoa(result.PagesCrawled)},
			{"Elapsed", fmt.Sprintf("%.1fs", result.Metadata.ElapsedSeconds)},
			{"Mode", result.Metadata.Mode},
			{"Depth / Page Budget", fmt.Sprintf("%d / %d", result.Metadata.MaxDepth, result.Metadata.MaxPages)},
		},
	})
	md.PlainText("")

	if len(result.Metadata.Keywords) > 0 {
		md.PlainText("Keywords: `" + strings.Join(result.Metadata.Keywords, "`, `") + "`")
		md.PlainText("")
	}
}

// statusText renders the crawl status with its message.
func statusText(result *model.CrawlResult) string {
	switch result.Status {
	case model.StatusSuccess:
		return "✅ Success"
	case model.StatusTimeout:
		return "⚠️ Timed out (partial results)"
	case model.StatusError:
		return "❌ Error - " + result.Message
	default:
		return string(result.Status)
	}
}

// writePages writes one section per crawled page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Results) == 0 {
		return
	}

	md.H2("Pages")
	md.PlainText("")

	for i := range result.Results {
		page := &result.Results[i]

		title := page.Title
		if title == "" {
			title = page.URL
		}
		md.H3(title)
		md.PlainText("")

		md.BulletList(
			"URL: "+page.URL,
			"Type: "+page.Metadata.PageType,
			"Depth: "+strconv.Itoa(page.Depth),
			"Words: "+strconv.Itoa(page.Metadata.WordCount),
			"Language: "+page.Metadata.Language,
		)
		md.PlainText("")

		if w.includeContent && page.Content != "" {
			md.Details("Content", page.Content)
			md.PlainText("")
		}
	}
}

// writeFailures lists URLs that could not be fetched.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Metadata.FailedURLs) == 0 {
		return
	}

	md.H2("Failed URLs")
	md.PlainText("")
	md.BulletList(result.Metadata.FailedURLs...)
	md.PlainText("")
}
