// Package extract turns rendered documentation pages into normalized
// Markdown and discovers the outbound links that keep the traversal
// going.
//
// Content extraction probes an ordered list of container selectors,
// most specific first, and falls back to readability over the whole
// document. Link discovery applies the site-scoping filter: same host,
// path under the documentation prefix, no in-page anchors, no raster
// images.
package extract
