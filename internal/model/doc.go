// Package model defines the data structures produced by a crawl.
//
// The central types are:
//   - CrawlParameters: the immutable inputs of one crawl invocation
//   - PageRecord: one successfully fetched page with content and metadata
//   - PageMetadata: multi-aspect metadata extracted from a page
//   - CrawlResult: the aggregate outcome of a crawl, serializable to JSON
//
// All types in this package are plain data carriers with no behavior beyond
// validation and convenience accessors. They are created by the crawler and
// consumed by persistence, reporting, and downstream analysis collaborators.
package model
