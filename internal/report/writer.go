package report

import (
	"io"

	"github.com/seerhq/seer/internal/model"
)

// Writer outputs a crawl result to a configured destination.
//
// An interface keeps output formats and destinations interchangeable:
// the same call site can write to a terminal, a file, or both.
type Writer interface {
	// Write outputs the crawl result. It returns the number of bytes
	// written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// MultiWriter writes a result to several Writers, stopping on the
// first error. It exists because the Writer interface takes crawl
// results, not raw bytes, so io.MultiWriter cannot serve here.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to every configured Writer and returns the
// total bytes written.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
