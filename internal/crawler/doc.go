// Package crawler walks a site from a seed URL, bounded by depth and
// page budgets, and assembles structured page records into a crawl
// result. Traversal is depth-first over an explicit frontier stack;
// per-page failures are recorded and never abort the crawl.
package crawler
