// Package scanner runs the rule engine against a list of pages, one page at
// a time, and turns the engine's untyped output into model.PageResult values.
//
// # Failure isolation
//
// A page that cannot be scanned never aborts the audit. Navigation errors,
// engine timeouts, malformed engine output and even panics inside a browser
// session are caught at the page boundary and recorded as a ScanFailure,
// then the next page is scanned. A page whose result has neither violations
// nor passes is also recorded as failed, since a rendered page always passes
// at least one rule.
//
// # Resource model
//
// Exactly one browser session is open at any time. It is opened per page and
// closed on every exit path, including failures.
//
// Design decision: Pages are scanned sequentially rather than with a worker
// pool. Remote browser sessions are billed and rate limited, and three pages
// at the default timeout fit the audit deadline without parallelism.
package scanner
