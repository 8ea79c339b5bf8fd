package pipeline

import "errors"

var (
	// ErrNoValidURLs is returned when no URL survives validation and
	// exclude filtering. No page is scanned.
	ErrNoValidURLs = errors.New("No valid URLs provided") //nolint:staticcheck // message is part of the API contract

	// errNoReport means a step that needs the report ran before aggregation.
	errNoReport = errors.New("no report to process")
)
