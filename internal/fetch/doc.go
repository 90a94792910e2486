// Package fetch provides the page-rendering capability behind the
// crawl: given a URL, produce the final page HTML and status code.
//
// The Renderer interface keeps the orchestrator independent of how
// pages are loaded. HTTPRenderer is the default implementation; sites
// that render their documentation client-side can be served by a
// headless-browser Renderer without changes elsewhere.
package fetch
