package document

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fnbrainvault/webmark/internal/model"
)

// IndexFileName is the generated table of contents at the output root.
const IndexFileName = "INDEX.md"

// ErrOutsideOutputDir is returned when a URL path would escape the
// output directory after cleaning. This guards against path traversal
// through crafted links.
var ErrOutsideOutputDir = errors.New("document path escapes output directory")

// frontMatter is the YAML header written at the top of every saved
// document. Field order matters for readability, so this is a struct
// rather than a map.
type frontMatter struct {
	Title     string   `yaml:"title"`
	SourceURL string   `yaml:"source_url"`
	Date      string   `yaml:"date"`
	Category  string   `yaml:"category,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// Writer persists extracted pages as Markdown files whose paths mirror
// the source URL structure under a single output directory.
type Writer struct {
	outputDir string

	// now is injectable for deterministic dates in tests.
	now func() time.Time
}

// NewWriter creates a Writer rooted at outputDir, creating the
// directory if needed.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{
		outputDir: outputDir,
		now:       time.Now,
	}, nil
}

// OutputDir returns the root directory documents are written under.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// PathFor maps a page URL to its on-disk Markdown path. The URL path
// becomes a relative path under the output directory, with a trailing
// slash (or empty path) mapping to index.md for that directory.
func (w *Writer) PathFor(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	rel := strings.TrimPrefix(u.Path, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index"
	}
	if !strings.HasSuffix(rel, ".md") {
		rel = strings.TrimSuffix(rel, ".html")
		rel += ".md"
	}

	full := filepath.Join(w.outputDir, filepath.FromSlash(rel))

	// filepath.Join cleans "..", so a path that still escapes the
	// output root means the URL was hostile.
	cleanRoot := filepath.Clean(w.outputDir) + string(filepath.Separator)
	if !strings.HasPrefix(full, cleanRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideOutputDir, pageURL)
	}
	return full, nil
}

// Write saves the extracted page and returns the path it was written
// to. Parent directories are created as needed; an existing file at
// the same path is overwritten.
func (w *Writer) Write(pageURL string, page *model.ExtractedPage) (string, error) {
	path, err := w.PathFor(pageURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	header, err := yaml.Marshal(frontMatter{
		Title:     page.Title,
		SourceURL: pageURL,
		Date:      w.now().Format("2006-01-02"),
		Category:  page.CategoryHint,
		Tags:      deriveTags(pageURL, page.CategoryHint),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(page.Markdown)
	sb.WriteString("\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// deriveTags builds searchable tags from the category and the URL path
// segments, lowercased and deduplicated.
func deriveTags(pageURL, category string) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0, 4)

	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.ReplaceAll(tag, " ", "-")
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	add(category)
	if u, err := url.Parse(pageURL); err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		// The last segment is the page itself, not a grouping.
		if len(segments) > 1 {
			for _, seg := range segments[:len(segments)-1] {
				add(seg)
			}
		}
	}
	return tags
}
