package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoSeedURL is returned when no seed URL is provided either as
	// a positional argument or via a preset.
	ErrNoSeedURL = errors.New("no seed URL specified: provide a URL or use --preset")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidMaxRetries is returned when max retries is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidRetryDelay is returned when the retry base delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry base delay: must be non-negative")

	// ErrInvalidRecursionRetries is returned when the recursion retry
	// budget is negative.
	ErrInvalidRecursionRetries = errors.New("invalid max recursion retries: must be non-negative")

	// ErrInvalidRateLimit is returned when the rate limit delay is
	// negative. Use 0 for no delay between requests.
	ErrInvalidRateLimit = errors.New("invalid rate limit delay: must be non-negative")

	// ErrInvalidMaxDepth is returned when the depth limit is not positive.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive. A zero timeout would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSaveInterval is returned when the save interval is not
	// positive. A zero interval would disable snapshotting entirely.
	ErrInvalidSaveInterval = errors.New("invalid save interval: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownPreset is returned when a requested preset name does
	// not exist in the configuration file or built-in presets.
	ErrUnknownPreset = errors.New("unknown preset")
)
