// Package report renders crawl results for human and machine
// consumption. JSON output targets tool integration; Markdown output
// targets documentation and sharing.
package report
