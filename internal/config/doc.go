// Package config provides configuration structures and utilities for the
// seer crawler. It defines the main configuration options for crawling,
// per-site overrides loaded from the .seer YAML file, and report
// generation preferences.
package config
