package browser

import "errors"

// Browser errors.
//
// Design decision: We define specific errors rather than wrapping all errors
// generically. ErrBrowserNotConfigured aborts a whole audit before any URL is
// touched, while the others only fail the page being scanned.
var (
	// ErrBrowserNotConfigured is returned when no browser service endpoint or
	// API key is configured. It is a precondition failure for every audit.
	ErrBrowserNotConfigured = errors.New("browser service is not configured: set " +
		"A11YAUDIT_BROWSER_ENDPOINT and A11YAUDIT_BROWSER_API_KEY, or use --local")

	// ErrInvalidEndpoint is returned when the endpoint is not a ws:// or wss:// URL.
	ErrInvalidEndpoint = errors.New("invalid browser endpoint: expected ws:// or wss:// URL")

	// ErrBrowserUnreachable is returned when the endpoint host does not accept connections.
	ErrBrowserUnreachable = errors.New("browser service is unreachable")

	// ErrNavigation is returned when the browser reports a navigation error
	// such as a DNS failure or a refused connection.
	ErrNavigation = errors.New("navigation failed")

	// ErrEngineNotReady is returned when the injected rule engine does not
	// become available within the engine ready timeout.
	ErrEngineNotReady = errors.New("accessibility rule engine did not become ready")

	// ErrEmptyScript is returned when the rule engine script source is empty.
	ErrEmptyScript = errors.New("rule engine script is empty")

	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("browser session is closed")
)

// EndpointStatus represents the result of checking the browser configuration.
type EndpointStatus int

const (
	// EndpointStatusOK indicates the endpoint is configured and well formed.
	EndpointStatusOK EndpointStatus = iota

	// EndpointStatusMissing indicates the endpoint or API key is not set.
	EndpointStatusMissing

	// EndpointStatusInvalid indicates the endpoint is not a websocket URL.
	EndpointStatusInvalid

	// EndpointStatusUnreachable indicates the endpoint host refused the connection.
	EndpointStatusUnreachable
)

// String returns a human-readable description of the endpoint status.
func (s EndpointStatus) String() string {
	switch s {
	case EndpointStatusOK:
		return "OK"
	case EndpointStatusMissing:
		return "not configured"
	case EndpointStatusInvalid:
		return "invalid endpoint"
	case EndpointStatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s EndpointStatus) Error() error {
	switch s {
	case EndpointStatusOK:
		return nil
	case EndpointStatusMissing:
		return ErrBrowserNotConfigured
	case EndpointStatusInvalid:
		return ErrInvalidEndpoint
	case EndpointStatusUnreachable:
		return ErrBrowserUnreachable
	default:
		return errors.New("unknown endpoint status")
	}
}
