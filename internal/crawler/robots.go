package crawler

import (
	"context"
	"net/url"

	"github.com/temoto/robotstxt"
)

// robotsGate answers whether a URL may be fetched. A nil gate allows
// everything.
type robotsGate interface {
	allowed(pageURL string) bool
}

// robotsGroup wraps a parsed robots.txt group.
type robotsGroup struct {
	group *robotstxt.Group
}

func (r *robotsGroup) allowed(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return r.group.Test(u.EscapedPath())
}

// loadRobots fetches and parses the seed host's robots.txt. Any
// failure, including a missing file, results in a nil gate: crawling
// proceeds unrestricted, matching how browsers treat absent robots
// files.
func (c *Crawler) loadRobots(ctx context.Context, seed *url.URL) robotsGate {
	robotsURL := seed.Scheme + "://" + seed.Host + "/robots.txt"

	resp, err := c.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		c.logger.Debug("robots.txt not available", "url", robotsURL, "error", err)
		return nil
	}

	data, err := robotstxt.FromBytes(resp.Body)
	if err != nil {
		c.logger.Debug("robots.txt unparseable", "url", robotsURL, "error", err)
		return nil
	}

	group := data.FindGroup("*")
	if group == nil {
		return nil
	}

	return &robotsGroup{group: group}
}
