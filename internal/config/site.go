package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per source, e.g. session cookies
// for gated forums or tighter budgets for large sites.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global depth budget for this site.
	// Zero means the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this site.
	// Zero means the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Keywords are extra keywords merged into the crawl's keyword list
	// for this site.
	Keywords []string `yaml:"keywords,omitempty"`

	// Render overrides the global render mode for this site
	// ("http" or "headless"). Empty means the global mode is used.
	Render string `yaml:"render,omitempty"`

	// IgnorePatterns are URL path glob patterns whose links are not
	// followed on this site (e.g. "/admin/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict followed links to matching URL paths.
	// Empty means all paths are followed.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .seer configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without a scheme (e.g. "forum.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
// The returned value owns its map and slices, so callers never
// mutate the shared defaults through it.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}
	result.Keywords = append([]string(nil), cf.Defaults.Keywords...)

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.Render != "" {
			result.Render = siteConfig.Render
		}
		if len(siteConfig.Keywords) > 0 {
			result.Keywords = append(result.Keywords, siteConfig.Keywords...)
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.FollowPatterns) > 0 {
			result.FollowPatterns = siteConfig.FollowPatterns
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string, len(siteConfig.Headers))
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
