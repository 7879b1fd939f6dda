// Package extract turns fetched HTML into structured content. It
// locates the main content region, converts it to markdown, gathers
// page metadata through independent sub-extractors, classifies the
// page type, and collects same-domain links for traversal.
//
// Every extractor degrades gracefully: a failing sub-extractor leaves
// its field empty instead of failing the page.
package extract
