package retry

import (
	"fmt"
	"time"

	"github.com/fnbrainvault/webmark/internal/model"
)

// DecisionKind is the classifier's verdict for a fetch outcome.
type DecisionKind int

// Decision kinds.
const (
	// Success means the page was fetched and can be processed.
	Success DecisionKind = iota

	// Retry means the failure is transient; try again after Delay.
	Retry

	// PermanentFail means the URL must not be retried this run.
	PermanentFail
)

// String returns the decision kind name.
func (k DecisionKind) String() string {
	switch k {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case PermanentFail:
		return "permanent_fail"
	default:
		return "unknown"
	}
}

// Decision is the classifier output: what to do with a URL after a
// fetch attempt.
type Decision struct {
	// Kind is the verdict.
	Kind DecisionKind

	// Delay is how long to wait before the next attempt.
	// Only meaningful when Kind is Retry.
	Delay time.Duration

	// Reason is a short status tag ("http_404", "failed_418", ...)
	// recorded with permanent failures.
	Reason string
}

// Classifier maps fetch outcomes to retry-or-fail decisions.
//
// The policy distinguishes three transient classes with different
// backoff shapes: gateway errors (502/503/504) back off exponentially,
// rate limiting (429) waits a flat five times the base delay, and
// request timeout (408) waits a single base delay. The flat multiplier
// for 429 looks inconsistent next to the exponential curve but is the
// behavior the tool has always had, so it stays.
type Classifier struct {
	// maxRetries bounds retry attempts for transient failures.
	maxRetries int

	// baseDelay is the unit all retry delays are derived from.
	baseDelay time.Duration

	// maxRecursionRetries bounds retry attempts for depth-limit
	// failures. Tracked independently of maxRetries.
	maxRecursionRetries int
}

// NewClassifier creates a Classifier with the given retry policy.
func NewClassifier(maxRetries int, baseDelay time.Duration, maxRecursionRetries int) *Classifier {
	return &Classifier{
		maxRetries:          maxRetries,
		baseDelay:           baseDelay,
		maxRecursionRetries: maxRecursionRetries,
	}
}

// MaxRetries returns the transient-failure retry budget.
func (c *Classifier) MaxRetries() int {
	return c.maxRetries
}

// Classify maps a fetch outcome and the number of retries already
// spent on the URL to a decision. retryCount is the number of
// completed attempts beyond the first; the first call after an initial
// failure passes 1.
func (c *Classifier) Classify(outcome *model.FetchOutcome, retryCount int) Decision {
	// Transport-level failures carry no status code. They are retried
	// up to the budget, then fail permanently with the error text.
	if outcome.StatusCode == 0 {
		message := "client error"
		if outcome.Err != nil {
			message = outcome.Err.Message
		}
		if retryCount >= c.maxRetries {
			return Decision{Kind: PermanentFail, Reason: message}
		}
		return Decision{Kind: Retry, Delay: c.baseDelay}
	}

	switch outcome.StatusCode {
	case 200:
		return Decision{Kind: Success}

	case 502, 503, 504:
		if retryCount >= c.maxRetries {
			return Decision{Kind: PermanentFail, Reason: fmt.Sprintf("http_%d", outcome.StatusCode)}
		}
		return Decision{Kind: Retry, Delay: c.backoff(retryCount)}

	case 429:
		if retryCount >= c.maxRetries {
			return Decision{Kind: PermanentFail, Reason: "http_429"}
		}
		return Decision{Kind: Retry, Delay: c.baseDelay * 5}

	case 408:
		if retryCount >= c.maxRetries {
			return Decision{Kind: PermanentFail, Reason: "http_408"}
		}
		return Decision{Kind: Retry, Delay: c.baseDelay}

	case 401, 403, 404:
		// Authentication and missing-page failures never resolve by
		// retrying.
		return Decision{Kind: PermanentFail, Reason: fmt.Sprintf("http_%d", outcome.StatusCode)}

	default:
		return Decision{Kind: PermanentFail, Reason: fmt.Sprintf("failed_%d", outcome.StatusCode)}
	}
}

// ShouldRetryRecursion reports whether a recursion failure still has
// budget left. attempts is the number of widened-depth retries already
// made for the URL.
func (c *Classifier) ShouldRetryRecursion(attempts int) bool {
	return attempts < c.maxRecursionRetries
}

// backoff computes the exponential delay for gateway errors:
// baseDelay doubled once per retry already spent.
func (c *Classifier) backoff(retryCount int) time.Duration {
	delay := c.baseDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
	}
	return delay
}
