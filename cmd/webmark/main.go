// Package main provides the entry point for the WebMark CLI.
//
// WebMark recursively downloads documentation sites and converts each
// page to Markdown with YAML front matter, resuming interrupted runs
// from a persisted state file.
//
// Usage:
//
//	webmark download <url>
//	webmark download --preset uefn
//	webmark retry
//
// See --help for all available options.
package main

// main is the entry point for WebMark.
func main() {
	Execute()
}
