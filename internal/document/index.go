package document

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nao1215/markdown"
)

// indexExcluded are Markdown files at the output root that are
// generated artifacts, not downloaded documents.
var indexExcluded = map[string]bool{
	IndexFileName: true,
	"failures.md": true,
	"README.md":   true,
}

// GenerateIndex walks the output directory and writes INDEX.md at its
// root: a nested bullet list of every downloaded document, grouped by
// directory, linking to the files by relative path.
//
// Titles come from each document's front matter; files without one
// fall back to a title-cased form of the file name.
func (w *Writer) GenerateIndex() error {
	entries, err := collectDocuments(w.outputDir)
	if err != nil {
		return fmt.Errorf("failed to scan output directory: %w", err)
	}

	file, err := os.Create(filepath.Join(w.outputDir, IndexFileName))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer file.Close()

	md := markdown.NewMarkdown(file)
	md.H1("Documentation Index")
	md.PlainText("")
	md.PlainTextf("%d documents.", len(entries))
	md.PlainText("")

	lastDirs := []string{}
	for _, entry := range entries {
		dirs := entry.dirs()

		// Emit a heading line for each directory level entered since
		// the previous entry.
		common := commonPrefixLen(lastDirs, dirs)
		for i := common; i < len(dirs); i++ {
			indent := strings.Repeat("  ", i)
			md.PlainTextf("%s- **%s**", indent, titleCase(dirs[i]))
		}
		lastDirs = dirs

		indent := strings.Repeat("  ", len(dirs))
		md.PlainTextf("%s- [%s](%s)", indent, entry.title, filepath.ToSlash(entry.relPath))
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// indexEntry is one downloaded document discovered during the walk.
type indexEntry struct {
	relPath string
	title   string
}

// dirs returns the directory segments of the entry's relative path.
func (e indexEntry) dirs() []string {
	dir := filepath.Dir(e.relPath)
	if dir == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(dir), "/")
}

// collectDocuments finds every Markdown document under root, sorted by
// relative path so directory groups come out contiguous.
func collectDocuments(root string) ([]indexEntry, error) {
	var entries []indexEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if filepath.Dir(rel) == "." && indexExcluded[d.Name()] {
			return nil
		}

		entries = append(entries, indexEntry{
			relPath: rel,
			title:   documentTitle(path, d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].relPath < entries[j].relPath
	})
	return entries, nil
}

// documentTitle reads the title field from a document's front matter,
// falling back to a title-cased form of the file name.
func documentTitle(path, name string) string {
	fallback := titleCase(strings.TrimSuffix(name, ".md"))

	file, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return fallback
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "---" {
			break
		}
		if title, ok := strings.CutPrefix(line, "title:"); ok {
			title = strings.Trim(strings.TrimSpace(title), `"'`)
			if title != "" {
				return title
			}
		}
	}
	return fallback
}

// titleCase turns a path segment like "getting-started" into
// "Getting Started".
func titleCase(segment string) string {
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	words := strings.Fields(segment)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// commonPrefixLen returns the length of the shared leading segments of
// two directory paths.
func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
