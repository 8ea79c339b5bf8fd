package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	// A cap of zero would scan nothing and always produce an empty audit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	// Use 0 to run the rule engine as soon as the DOM is ready.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidEngineReadyTimeout is returned when the engine ready timeout is not positive.
	ErrInvalidEngineReadyTimeout = errors.New("invalid engine ready timeout: must be positive")

	// ErrInvalidAuditDeadline is returned when the audit deadline is not positive.
	ErrInvalidAuditDeadline = errors.New("invalid audit deadline: must be positive")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --html and --text is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json, --html and --text cannot be used together")

	// ErrNoAxeScript is returned when no rule engine script source is configured.
	ErrNoAxeScript = errors.New("no axe script configured: set --axe-script to a file path or URL")

	// ErrInvalidSiteHost is returned when a sites key in the configuration
	// file is not a bare host name such as "www.example.com".
	ErrInvalidSiteHost = errors.New("invalid site host: use a bare host name without scheme or path")

	// ErrInvalidExcludePattern is returned for an empty or malformed URL path glob.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")

	// ErrEmptyExcludeSelector is returned for a blank CSS selector.
	ErrEmptyExcludeSelector = errors.New("empty exclude selector")
)
