// Package fetch retrieves web pages over HTTP or through a headless
// browser. It provides the Fetcher interface consumed by the crawler,
// a plain HTTP implementation with rotating browser-like headers, a
// chromedp-backed implementation for JavaScript-heavy sites, and a
// SOCKS5 proxy client for routing requests through Tor or similar
// proxies.
package fetch
