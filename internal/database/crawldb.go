package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/seerhq/seer/internal/model"
)

// dbFileName is the SQLite database file created under the data directory.
const dbFileName = "seer.db"

// CrawlDB provides SQLite-based storage for crawl runs and pages.
//
// A single database file holds all runs, which keeps history queries
// and backup simple.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB under dbDir.
// With CreateIfNotExists the directory and database file are created;
// without it a missing database is an error.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl invocation, with the full result as JSON.
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT,
		pages_crawled INTEGER NOT NULL DEFAULT 0,
		elapsed_seconds REAL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON crawl_runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON crawl_runs(timestamp);

	-- Individual page records, queryable without loading the run JSON.
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT,
		content TEXT,
		content_type TEXT,
		depth INTEGER,
		page_type TEXT,
		metadata_json TEXT,
		UNIQUE(url, run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlResult stores a crawl result and its pages, returning the
// new run's ID. Pages are upserted on (url, run_id).
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize crawl result: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (seed_url, status, message, pages_crawled, elapsed_seconds, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		result.URL,
		string(result.Status),
		result.Message,
		result.PagesCrawled,
		result.Metadata.ElapsedSeconds,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run ID: %w", err)
	}

	pageQuery := `
	INSERT INTO pages (run_id, url, title, content, content_type, depth, page_type, metadata_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, run_id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		content_type = excluded.content_type,
		depth = excluded.depth,
		page_type = excluded.page_type,
		metadata_json = excluded.metadata_json
	`

	for i := range result.Results {
		page := &result.Results[i]

		metaJSON, err := json.Marshal(page.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize page metadata: %w", err)
		}

		if _, err := tx.ExecContext(ctx, pageQuery,
			runID,
			page.URL,
			page.Title,
			page.Content,
			page.ContentType,
			page.Depth,
			page.Metadata.PageType,
			string(metaJSON),
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl result: %w", err)
	}

	return runID, nil
}

// GetCrawlResultByID loads a full crawl result by run ID. Returns
// (nil, nil) when the run doesn't exist.
func (cdb *CrawlDB) GetCrawlResultByID(ctx context.Context, id int64) (*model.CrawlResult, error) {
	var resultJSON string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT result_json FROM crawl_runs WHERE id = ?`, id,
	).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse crawl result: %w", err)
	}
	return &result, nil
}

// GetLatestCrawlResult loads the most recent crawl result for a seed
// URL. Returns (nil, nil) when the URL has never been crawled.
func (cdb *CrawlDB) GetLatestCrawlResult(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	var resultJSON string
	err := cdb.db.QueryRowContext(ctx, `
	SELECT result_json FROM crawl_runs
	WHERE seed_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, seedURL).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest crawl: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse crawl result: %w", err)
	}
	return &result, nil
}

// RunSummary is the run-level view used for history listings, loaded
// without the full result JSON.
type RunSummary struct {
	// ID is the run's database identifier.
	ID int64

	// SeedURL is the URL the crawl started from.
	SeedURL string

	// Status is the crawl's final status.
	Status string

	// PagesCrawled is the number of pages in the run.
	PagesCrawled int

	// ElapsedSeconds is the crawl duration.
	ElapsedSeconds float64

	// Timestamp is when the run was stored.
	Timestamp time.Time
}

// GetCrawlHistory lists run summaries, newest first. An empty seedURL
// lists every run.
func (cdb *CrawlDB) GetCrawlHistory(ctx context.Context, seedURL string) ([]RunSummary, error) {
	query := `
	SELECT id, seed_url, status, pages_crawled, elapsed_seconds, timestamp
	FROM crawl_runs
	`
	args := make([]any, 0, 1)
	if seedURL != "" {
		query += " WHERE seed_url = ?"
		args = append(args, seedURL)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var elapsed sql.NullFloat64
		var timestamp string

		if err := rows.Scan(&s.ID, &s.SeedURL, &s.Status, &s.PagesCrawled, &elapsed, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}

		s.ElapsedSeconds = elapsed.Float64
		s.Timestamp = parseTimestamp(timestamp)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListCrawledSites returns the distinct seed URLs present in the database.
func (cdb *CrawlDB) ListCrawledSites(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT DISTINCT seed_url FROM crawl_runs ORDER BY seed_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// HasRecentCrawl reports whether the seed URL was crawled within the
// given duration.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, seedURL string, within time.Duration) (bool, error) {
	// SQLite datetime modifier format.
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM crawl_runs
	WHERE seed_url = ? AND timestamp > datetime('now', ?)
	`, seedURL, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// timestampFormats contains the timestamp formats SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a SQLite timestamp string, trying each known
// format, and returns zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
