// Package main provides the entry point for the seer CLI.
//
// Seer is a bounded web crawler for threat-intelligence collection.
// It crawls a site from a seed URL, extracts the main content of each page
// as markdown, and collects structured metadata for downstream analysis.
//
// Usage:
//
//	seer crawl <url>
//	seer crawl --max-pages 25 --depth 3 <url> <url>
//	seer history <url>
//
// See --help for all available options.
package main

// main is the entry point for seer.
func main() {
	Execute()
}
