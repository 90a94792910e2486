package model

import "time"

// ErrorType classifies why a page fetch or traversal failed.
// The classifier and the retry controller branch on this value,
// and it is persisted verbatim in recursion failure records.
type ErrorType string

// Error type values.
const (
	// ErrorTypeHTTPStatus indicates a non-200 HTTP response.
	ErrorTypeHTTPStatus ErrorType = "HTTPStatus"

	// ErrorTypeClientError indicates a transport-level failure
	// (connection refused, DNS failure, TLS error, ...).
	ErrorTypeClientError ErrorType = "ClientError"

	// ErrorTypeRecursionError indicates the traversal exceeded the
	// configured depth limit at this URL. Recursion failures carry
	// their own retry budget, separate from network failures.
	ErrorTypeRecursionError ErrorType = "RecursionError"

	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout ErrorType = "Timeout"

	// ErrorTypeUnknown covers failures that fit no other category.
	ErrorTypeUnknown ErrorType = "Unknown"
)

// String returns the error type name.
func (e ErrorType) String() string {
	return string(e)
}

// ErrorRecord describes a single failure attributed to a URL.
type ErrorRecord struct {
	// URL is the page the failure is recorded against.
	URL string `json:"url"`

	// Type classifies the failure.
	Type ErrorType `json:"error_type"`

	// Message is the human-readable failure description.
	Message string `json:"message"`

	// Timestamp is when the failure was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// NewErrorRecord creates an ErrorRecord stamped with the current time.
func NewErrorRecord(url string, errType ErrorType, message string) ErrorRecord {
	return ErrorRecord{
		URL:       url,
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// FailureRecord is the terminal failure state of a URL: the HTTP status
// code (0 for transport errors) and the failure message. It is the
// value type of DownloadState.Failed and must round-trip losslessly
// through the state snapshot.
type FailureRecord struct {
	// StatusCode is the HTTP status code, or 0 for transport errors.
	StatusCode int `json:"status_code"`

	// Message is the failure description.
	Message string `json:"message"`
}

// FetchOutcome is the result of a single fetch attempt, successful or
// not. It is the sole input to the retry classifier.
type FetchOutcome struct {
	// URL is the fetched page.
	URL string

	// StatusCode is the HTTP status code, or 0 if the request never
	// produced a response (transport/client error).
	StatusCode int

	// Body is the decoded response body. Empty on failure.
	Body string

	// ContentType is the response Content-Type header value.
	ContentType string

	// Err describes the failure when the fetch did not succeed.
	Err *ErrorRecord
}

// Success reports whether the fetch produced a usable page.
func (o *FetchOutcome) Success() bool {
	return o.Err == nil && o.StatusCode == 200
}

// ExtractedPage is the extractor's view of a rendered page: the
// normalized content plus everything the frontier needs to continue
// the traversal.
type ExtractedPage struct {
	// Title is the resolved page title, never empty
	// ("Untitled Page" when nothing better exists).
	Title string

	// Markdown is the normalized page content.
	Markdown string

	// Links are the discovered outbound links that survived the
	// site-scoping filter, deduplicated, in document order.
	Links []string

	// CategoryHint is the documentation category inferred from the
	// table of contents or breadcrumbs. Empty when unknown.
	CategoryHint string

	// Images are absolute image source URLs found in the content.
	// Only used when image downloading is enabled.
	Images []string
}

// RunSummary is the orchestrator's final account of a crawl run.
type RunSummary struct {
	// Processed is the number of URLs fetched and written this run.
	Processed int

	// Failed is the number of URLs in a terminal failure state.
	Failed int

	// Skipped is the number of URLs skipped because a previous run
	// already completed them.
	Skipped int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// Err is set when the run itself failed (resource initialization),
	// as opposed to individual URLs failing.
	Err error
}

// Progress is a point-in-time progress notification sent to an
// optional observer channel. Delivery is fire-and-forget.
type Progress struct {
	// Done is the number of URLs with a terminal outcome so far.
	Done int

	// Total is the number of URLs known to the traversal so far.
	// It grows as links are discovered.
	Total int
}

// Percent returns completion as a percentage in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total) * 100
}
