// Package document persists extracted pages as Markdown files.
//
// Each document carries a YAML front matter header (title, source URL,
// date, category, tags) and lands at a path mirroring the source URL
// under the output directory. The package also generates INDEX.md, a
// nested table of contents over everything downloaded.
package document
