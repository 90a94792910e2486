package extract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"

	"github.com/fnbrainvault/webmark/internal/fetch"
	"github.com/fnbrainvault/webmark/internal/model"
)

// Extraction errors.
var (
	// ErrExtraction wraps any fault raised while extracting a page.
	// Extraction faults never propagate past the extractor; callers
	// record them against the URL and continue with siblings.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoContent is returned when no content container matched and
	// even the whole-document fallback produced nothing.
	ErrNoContent = fmt.Errorf("%w: no content found", ErrExtraction)
)

// contentSelectors is the ordered probe list for the page's content
// container, most specific first. The whole document is the final
// fallback, handled separately via readability.
var contentSelectors = []string{
	`main[slot="documentation-main"]`,
	`article.documentation`,
	`main article`,
	`div.documentation-page`,
	`main`,
	`article`,
	`body`,
}

// fallbackTitle is used when neither the document title nor any
// heading yields a usable title.
const fallbackTitle = "Untitled Page"

// blankLines collapses runs of blank lines left over from conversion.
var blankLines = regexp.MustCompile(`\n{3,}`)

// Extractor turns a rendered page into normalized Markdown content
// plus the outbound links that survive the site-scoping filter.
type Extractor struct {
	scope     *Scope
	converter *md.Converter
}

// New creates an Extractor scoped to the given documentation subtree.
func New(scope *Scope) *Extractor {
	return &Extractor{
		scope:     scope,
		converter: md.NewConverter("", true, nil),
	}
}

// Extract parses the rendered page and returns its title, normalized
// content, category hint, scoped links, and image sources.
//
// All faults, including panics from malformed documents, are reported
// as an error wrapping ErrExtraction; nothing propagates past here.
func (e *Extractor) Extract(page *fetch.RenderedPage, pageURL string) (extracted *model.ExtractedPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			extracted = nil
			err = fmt.Errorf("%w: panic extracting %s: %v", ErrExtraction, pageURL, r)
		}
	}()

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid page URL %q: %v", ErrExtraction, pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrExtraction, pageURL, err)
	}

	// Links and images are discovered from the full document before
	// navigation chrome is stripped: sidebars and tables of contents
	// are exactly where documentation links live.
	links := e.discoverLinks(doc, base)
	images := discoverImages(doc, base)
	category := findCategory(doc, base.Path)

	// Navigation and scripting have no place in the saved document.
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	title := resolveTitle(doc)

	markdown, err := e.extractContent(doc, page, base)
	if err != nil {
		return nil, err
	}

	return &model.ExtractedPage{
		Title:        title,
		Markdown:     markdown,
		Links:        links,
		CategoryHint: category,
		Images:       images,
	}, nil
}

// extractContent probes the selector list for the first non-empty
// content container and converts it to normalized Markdown. When no
// selector matches it falls back to readability over the whole
// document.
func (e *Extractor) extractContent(doc *goquery.Document, page *fetch.RenderedPage, base *url.URL) (string, error) {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		return normalizeMarkdown(e.converter.Convert(sel)), nil
	}

	// Whole-document fallback: let readability pick the content out
	// of whatever structure the page has.
	article, err := readability.FromReader(strings.NewReader(page.Body), base)
	if err != nil {
		return "", fmt.Errorf("%w: readability fallback for %s: %v", ErrExtraction, base.String(), err)
	}

	markdown, err := e.converter.ConvertString(article.Content)
	if err != nil {
		return "", fmt.Errorf("%w: markdown conversion for %s: %v", ErrExtraction, base.String(), err)
	}

	markdown = normalizeMarkdown(markdown)
	if markdown == "" {
		return "", ErrNoContent
	}
	return markdown, nil
}

// discoverLinks collects anchor targets that pass the site-scoping
// filter, deduplicated, in document order.
func (e *Extractor) discoverLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		canonical := Canonicalize(base, href)
		if canonical == "" || seen[canonical] {
			return
		}
		if !e.scope.Allows(canonical) {
			return
		}
		seen[canonical] = true
		links = append(links, canonical)
	})

	return links
}

// discoverImages collects absolute image sources from the document.
func discoverImages(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	images := make([]string, 0)

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		u, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := base.ResolveReference(u).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	})

	return images
}

// resolveTitle picks the page title: document title, else the first
// heading, else the literal fallback.
func resolveTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if heading := strings.TrimSpace(doc.Find("h1, h2, h3").First().Text()); heading != "" {
		return heading
	}
	return fallbackTitle
}

// findCategory infers the documentation category: the TOC parent link
// whose href prefixes the page path, else the last breadcrumb.
func findCategory(doc *goquery.Document, pagePath string) string {
	category := ""
	doc.Find(`[slot="documentation-toc"] a.contents-table-link.is-parent`).
		EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if href != "" && strings.HasPrefix(pagePath, href) {
				category = strings.TrimSpace(sel.Text())
				return false
			}
			return true
		})
	if category != "" {
		return category
	}

	crumb := doc.Find(".breadcrumb-item").Last()
	if title, ok := crumb.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(crumb.Text())
}

// normalizeMarkdown collapses excess blank lines and applies NFC
// normalization so identical content always serializes identically.
func normalizeMarkdown(markdown string) string {
	markdown = blankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(norm.NFC.String(markdown))
}
