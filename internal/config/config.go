package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen to keep a default crawl polite and bounded: a handful
// of pages, shallow depth, and a visible delay between requests to the
// same host.
const (
	// DefaultMaxDepth is the default depth budget. Two hops from the
	// seed covers most landing page -> section -> article structures.
	DefaultMaxDepth = 2

	// DefaultMaxPages is the default page budget per crawl.
	// This prevents runaway crawling on large or infinitely-generating sites.
	DefaultMaxPages = 10

	// DefaultFetchTimeout is the per-request timeout. Threat-intel
	// sources are often slow or proxied, so the timeout is generous.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultCrawlTimeout bounds a whole crawl run. When it fires the
	// crawl returns partial results with a timeout status.
	DefaultCrawlTimeout = 10 * time.Minute

	// DefaultCrawlDelay is the delay between consecutive fetches of the
	// same crawl. This is a politeness setting toward a single host.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultBatchSize is the number of concurrent crawls when multiple
	// seed URLs are given. Each crawl's state is private, so crawls only
	// contend for network resources.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is sufficient for HTML while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMinContentLength is the minimum character count a content
	// region must carry before the main-content locator accepts it.
	DefaultMinContentLength = 200

	// AppName is the application name used for XDG directory paths.
	AppName = "seer"
)

// Render modes for the fetcher.
const (
	// RenderModeHTTP fetches pages with plain HTTP GET requests.
	RenderModeHTTP = "http"

	// RenderModeHeadless renders pages in a headless browser before
	// extracting content. Slower, but handles script-driven pages.
	RenderModeHeadless = "headless"
)

// DefaultKeywords is the threat-intelligence keyword list applied when a
// crawl is invoked without explicit keywords. The keywords are threaded
// through to the crawl result for downstream analysis; they do not affect
// traversal order.
var DefaultKeywords = []string{
	"leaked credentials",
	"malware",
	"exploit kit",
	"zero-day",
	"ransomware",
	"ddos",
	"botnet",
	"phishing",
}

// Config holds all configuration options for the seer crawler.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Seeds is the list of seed URLs to crawl. Each seed gets its own
	// crawl with private state (visited set, page counter, results).
	Seeds []string

	// Keywords is an optional keyword list threaded through to results.
	// Empty means DefaultKeywords are used.
	Keywords []string

	// MaxDepth is the depth budget applied to each crawl.
	MaxDepth int

	// MaxPages is the page budget applied to each crawl.
	MaxPages int

	// FetchTimeout is the per-request timeout.
	FetchTimeout time.Duration

	// CrawlTimeout bounds one whole crawl run. Zero disables the bound.
	CrawlTimeout time.Duration

	// CrawlDelay is the delay between consecutive fetches of one crawl.
	CrawlDelay time.Duration

	// RenderMode selects the fetch strategy: RenderModeHTTP or
	// RenderModeHeadless.
	RenderMode string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Set this to a Tor SOCKS port to crawl onion services.
	ProxyAddress string

	// UserAgent overrides the rotating user-agent pool with a fixed value.
	// Empty means a random agent is picked per request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// MinContentLength is the minimum character count a candidate content
	// region must carry before the main-content locator accepts it. Pages
	// below the threshold fall back to the whole body.
	MinContentLength int

	// RespectRobots enables robots.txt checks on followed links.
	RespectRobots bool

	// BatchSize is the number of concurrent crawls for multi-seed runs.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the site configuration file.
	// If empty, the tool searches for .seer in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific overrides loaded from the config
	// file. Populated by LoadConfigFile.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for the SQLite database.
	// When set, crawl results are persisted for history queries.
	DBDir string

	// SaveToDB indicates whether crawl results are written to the
	// database. Automatically true when DBDir is configured.
	SaveToDB bool

	// ExportDir is the directory for per-job markdown export files.
	// Empty disables exports.
	ExportDir string
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so a constructor documents them in one place.
func NewConfig() *Config {
	return &Config{
		MaxDepth:         DefaultMaxDepth,
		MaxPages:         DefaultMaxPages,
		FetchTimeout:     DefaultFetchTimeout,
		CrawlTimeout:     DefaultCrawlTimeout,
		CrawlDelay:       DefaultCrawlDelay,
		RenderMode:       RenderModeHTTP,
		MaxBodySize:      DefaultMaxBodySize,
		MinContentLength: DefaultMinContentLength,
		BatchSize:        DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for seer.
// On Linux: ~/.local/share/seer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seer.
// On Linux: ~/.config/seer
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins, so
// failures surface with a clear message up front.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MinContentLength < 0 {
		return ErrInvalidMinContentLength
	}
	if c.RenderMode != RenderModeHTTP && c.RenderMode != RenderModeHeadless {
		return ErrInvalidRenderMode
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
