// Package database provides SQLite-based persistence for crawl runs
// and their page records. Each crawl run is stored with its full
// result as JSON plus per-page rows for querying without loading the
// whole result.
package database
