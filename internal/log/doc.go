// Package log provides secure logging with automatic sanitization of
// sensitive information, built on top of the standard slog package.
//
// Site configurations may carry session cookies and authorization headers
// for gated sources, and those values flow through crawl code paths that
// log request details. The SecureHandler masks such values before they
// reach the underlying handler, so verbose logs can be shared safely.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("request sent",
//	    "cookie", "session=abc123", // masked
//	    "url", "https://example.com",
//	)
//	slog.SetDefault(logger)
package log
