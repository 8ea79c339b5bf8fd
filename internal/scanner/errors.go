package scanner

import "errors"

// Page-level scan errors. They are recorded in the audit's failed scans and
// never returned to the caller of ScanPages.
var (
	// ErrEmptyResult is returned when the engine reports neither violations
	// nor passes, which means the page never rendered or was blocked.
	ErrEmptyResult = errors.New("page produced no violations and no passes (page did not render)")

	// ErrMalformedResult is returned when the engine output cannot be decoded.
	ErrMalformedResult = errors.New("malformed rule engine result")

	// ErrScanPanic is returned when a browser session panics while scanning.
	ErrScanPanic = errors.New("page scan panicked")
)
