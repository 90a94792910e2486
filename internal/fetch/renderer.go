package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/fnbrainvault/webmark/internal/model"
)

// RenderedPage is a fully loaded page as produced by a Renderer.
type RenderedPage struct {
	// URL is the page address after redirects.
	URL string

	// StatusCode is the final HTTP status code.
	StatusCode int

	// Body is the page HTML, decoded to UTF-8.
	Body string

	// ContentType is the response Content-Type header value.
	ContentType string
}

// Renderer is the page-rendering capability the orchestrator depends
// on. The default implementation fetches over plain HTTP; a headless
// browser implementation can be swapped in for sites that require
// script execution, without touching the crawl logic.
//
// The orchestrator owns exactly one Renderer for a run's lifetime and
// closes it on every exit path.
type Renderer interface {
	// Render loads the page at url and returns its final content.
	Render(ctx context.Context, url string) (*RenderedPage, error)

	// Close releases any resources held by the renderer.
	Close() error
}

// HTTPRenderer renders pages with a plain HTTP client. Bodies are
// decoded to UTF-8 using the response charset and capped at a
// configurable size.
type HTTPRenderer struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures an HTTPRenderer.
type Option func(*HTTPRenderer)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(r *HTTPRenderer) {
		r.userAgent = ua
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(size int64) Option {
	return func(r *HTTPRenderer) {
		r.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful in tests
// and for callers that need custom transport behavior.
func WithHTTPClient(client *http.Client) Option {
	return func(r *HTTPRenderer) {
		r.client = client
	}
}

// WithCredentials injects a raw cookie string and custom headers into
// every request, for documentation behind a login.
func WithCredentials(cookie string, headers map[string]string) Option {
	return func(r *HTTPRenderer) {
		if cookie == "" && len(headers) == 0 {
			return
		}
		r.client.Transport = &headerInjectingTransport{
			base:    r.client.Transport,
			cookie:  cookie,
			headers: headers,
		}
	}
}

// NewHTTPRenderer creates an HTTPRenderer with the given timeout.
//
// Design decision: We build the http.Client here rather than accepting
// one because the settings below (cookie jar, redirect cap) are part
// of the renderer's contract; tests that need full control can still
// use WithHTTPClient.
func NewHTTPRenderer(timeout time.Duration, opts ...Option) *HTTPRenderer {
	// Cookie jar for sites that set session cookies on first visit.
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	r := &HTTPRenderer{
		client: &http.Client{
			Transport: http.DefaultTransport,
			Timeout:   timeout,
			Jar:       jar,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   "WebMark/1.0",
		maxBodySize: 10 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render fetches the page and decodes its body to UTF-8.
func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (*RenderedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", pageURL, err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	// Decode to UTF-8 using the declared or sniffed charset. Broken
	// declarations fall back to reading the raw bytes.
	bodyReader := io.LimitReader(resp.Body, r.maxBodySize)
	decoded, err := charset.NewReader(bodyReader, contentType)
	if err != nil {
		decoded = bodyReader
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &RenderedPage{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		Body:        string(body),
		ContentType: contentType,
	}, nil
}

// Close releases idle connections.
func (r *HTTPRenderer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// Outcome converts a Render result (or error) into the FetchOutcome
// consumed by the retry classifier. Timeouts and cancellations are
// classified as Timeout, everything else transport-level as
// ClientError.
func Outcome(pageURL string, page *RenderedPage, err error) *model.FetchOutcome {
	if err != nil {
		errType := model.ErrorTypeClientError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			errType = model.ErrorTypeTimeout
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			errType = model.ErrorTypeTimeout
		}

		rec := model.NewErrorRecord(pageURL, errType, err.Error())
		return &model.FetchOutcome{URL: pageURL, Err: &rec}
	}

	outcome := &model.FetchOutcome{
		URL:         pageURL,
		StatusCode:  page.StatusCode,
		Body:        page.Body,
		ContentType: page.ContentType,
	}
	if page.StatusCode != 200 {
		rec := model.NewErrorRecord(pageURL, model.ErrorTypeHTTPStatus,
			fmt.Sprintf("HTTP %d", page.StatusCode))
		outcome.Err = &rec
		outcome.Body = ""
	}
	return outcome
}

// headerInjectingTransport wraps an http.RoundTripper to add a cookie
// and custom headers to every request, including redirects.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
