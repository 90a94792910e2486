package extract

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// rasterExtensions are image file extensions excluded from traversal.
// Anchors pointing at raw images are downloads, not pages.
var rasterExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".ico"}

// Scope is the site-scoping filter: it restricts discovered links to
// the documentation subtree under traversal.
//
// Identity is exact string comparison after URL resolution; there is
// no case folding and no query stripping, so two URLs that differ only
// in case are distinct pages.
type Scope struct {
	// host is the seed URL's host, including any port.
	host string

	// pathPrefix is the documentation segment a link's path must
	// start with to stay in scope.
	pathPrefix string
}

// NewScope builds a Scope from the seed URL. When linkPattern is empty
// the prefix is derived from the seed's path: the directory containing
// the seed page, so siblings and descendants stay in scope.
func NewScope(seedURL, linkPattern string) (*Scope, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("seed URL %q has no host", seedURL)
	}

	prefix := linkPattern
	if prefix == "" {
		prefix = path.Dir(u.Path)
		if prefix == "." {
			prefix = "/"
		}
	}

	return &Scope{host: u.Host, pathPrefix: prefix}, nil
}

// Host returns the scoped host.
func (s *Scope) Host() string {
	return s.host
}

// PathPrefix returns the scoped path prefix.
func (s *Scope) PathPrefix() string {
	return s.pathPrefix
}

// Allows reports whether an absolute URL belongs to the documentation
// subtree: same host, path under the prefix, and not a raster image.
func (s *Scope) Allows(absURL string) bool {
	u, err := url.Parse(absURL)
	if err != nil {
		return false
	}
	if u.Host != s.host {
		return false
	}
	// The prefix must end at a segment boundary: /docs matches /docs
	// and /docs/x but not /docsother/x.
	if s.pathPrefix != "/" &&
		u.Path != s.pathPrefix &&
		!strings.HasPrefix(u.Path, s.pathPrefix+"/") {
		return false
	}

	lower := strings.ToLower(u.Path)
	for _, ext := range rasterExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// Canonicalize resolves href against the page URL and strips the
// fragment, returning the canonical string key used for visited
// tracking. Returns empty string for links that can never be pages
// (in-page anchors, javascript:, mailto:, data:).
func Canonicalize(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}
