package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the defaults the tool shipped with originally and are
// chosen to be polite toward documentation servers.
const (
	// DefaultMaxRetries is the number of retry attempts for transient
	// failures (5xx, 408, 429, transport errors) before a URL is
	// recorded as permanently failed.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the base unit for retry backoff.
	// 5xx responses back off exponentially from this value, 429
	// multiplies it by five, 408 uses it as-is.
	DefaultRetryBaseDelay = 2 * time.Second

	// DefaultMaxRecursionRetries bounds retry attempts for URLs that
	// failed by exceeding the traversal depth limit. This budget is
	// independent of DefaultMaxRetries.
	DefaultMaxRecursionRetries = 2

	// DefaultRateLimitDelay is the fixed delay honored before every
	// fetch. A politeness setting, not a correctness requirement.
	DefaultRateLimitDelay = 500 * time.Millisecond

	// DefaultMaxDepth limits how deep the traversal follows links
	// from the seed URL. Exceeding it records a recursion failure
	// against the offending URL rather than aborting the crawl.
	DefaultMaxDepth = 50

	// DefaultRecursionRetryDepth is the widened depth allowance used
	// when retrying recursion failures. One extra attempt per URL.
	DefaultRecursionRetryDepth = 200

	// DefaultTimeout is the per-request timeout. Documentation sites
	// behind CDNs occasionally stall; 30 seconds is generous without
	// hanging the single-worker crawl for long.
	DefaultTimeout = 30 * time.Second

	// DefaultSaveInterval is how many completed URLs may accumulate
	// before the state snapshot is rewritten. Crash loss is bounded
	// to at most this many URLs.
	DefaultSaveInterval = 10

	// DefaultOutputDir is where documents and state are written when
	// no output directory is configured.
	DefaultOutputDir = "./downloaded_docs"

	// DefaultUserAgent identifies WebMark in HTTP requests.
	DefaultUserAgent = "WebMark/1.0 (+https://github.com/fnbrainvault/webmark)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 10MB covers even the heaviest documentation pages.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "webmark"
)

// Config holds all configuration for a download run.
// It is populated from CLI flags and the optional YAML config file and
// passed through the application by value; there is no global state.
type Config struct {
	// SeedURL is the root URL from which recursive discovery begins.
	SeedURL string `yaml:"seed_url"`

	// LinkPattern is the path prefix a discovered link must carry to
	// stay in scope (e.g. "/documentation/en-us/uefn"). When empty it
	// is derived from the seed URL's path at run start.
	LinkPattern string `yaml:"link_pattern"`

	// OutputDir is where documents, state, and reports are written.
	OutputDir string `yaml:"output_dir"`

	// ForceRefresh re-downloads URLs already recorded as completed.
	ForceRefresh bool `yaml:"force_refresh"`

	// DownloadImages enables the per-page image download pass.
	DownloadImages bool `yaml:"download_images"`

	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelay is the base unit for retry backoff.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// MaxRecursionRetries bounds retry attempts for recursion
	// failures. Tracked independently of MaxRetries.
	MaxRecursionRetries int `yaml:"max_recursion_retries"`

	// RateLimitDelay is the fixed inter-request delay.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`

	// MaxDepth is the traversal depth limit.
	MaxDepth int `yaml:"max_depth"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// SaveInterval is the number of completed URLs between state
	// snapshots.
	SaveInterval int `yaml:"save_interval"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `yaml:"user_agent"`

	// MaxBodySize limits how many bytes of a response body are read.
	MaxBodySize int64 `yaml:"max_body_size"`

	// Cookie is a raw cookie string sent with every request, for
	// documentation sites that sit behind a login.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a Config with all defaults applied.
//
// Design decision: We use a constructor rather than relying on zero
// values because most defaults are non-zero, and the constructor
// doubles as documentation of what those defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:           DefaultOutputDir,
		MaxRetries:          DefaultMaxRetries,
		RetryBaseDelay:      DefaultRetryBaseDelay,
		MaxRecursionRetries: DefaultMaxRecursionRetries,
		RateLimitDelay:      DefaultRateLimitDelay,
		MaxDepth:            DefaultMaxDepth,
		Timeout:             DefaultTimeout,
		SaveInterval:        DefaultSaveInterval,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for WebMark.
// On Linux: ~/.local/share/webmark
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for WebMark.
// On Linux: ~/.config/webmark
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found as a sentinel error. It is called once after flag parsing,
// before any network or filesystem work begins.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.RetryBaseDelay < 0 {
		return ErrInvalidRetryDelay
	}
	if c.MaxRecursionRetries < 0 {
		return ErrInvalidRecursionRetries
	}
	if c.RateLimitDelay < 0 {
		return ErrInvalidRateLimit
	}
	if c.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SaveInterval <= 0 {
		return ErrInvalidSaveInterval
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
