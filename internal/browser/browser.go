package browser

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
)

// checkEndpointTimeout is the timeout for the reachability probe.
// It only opens a TCP connection, so it can be short.
const checkEndpointTimeout = 3 * time.Second

// EngineTags is the fixed tag set every rule pass is scoped to:
// WCAG 2.0 and 2.1 Level A and AA, plus Section 508.
var EngineTags = []string{"wcag2a", "wcag2aa", "wcag21a", "wcag21aa", "section508"}

// Browser opens isolated browsing sessions.
type Browser interface {
	// Check verifies that sessions can be opened at all. It is called once
	// per audit, before any URL is touched.
	Check(ctx context.Context) error

	// NewSession opens a fresh browsing context that shares no cookies or
	// storage with any other session.
	NewSession(ctx context.Context) (Session, error)
}

// Session is one isolated browsing context. It is never shared between
// URLs and must be closed on every exit path.
type Session interface {
	// Navigate loads pageURL and returns once the DOM is ready.
	// The navigation is bounded by ctx.
	Navigate(ctx context.Context, pageURL string) error

	// RunEngine injects the rule engine into the current page, waits for it
	// and runs one pass. It returns the engine's raw JSON result with the
	// violations, passes, incomplete and inapplicable arrays.
	RunEngine(ctx context.Context, opts RunOptions) ([]byte, error)

	// Screenshot captures the full page as a JPEG.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the browsing context. It is safe to call more than once.
	Close() error
}

// RunOptions scopes one rule engine pass.
type RunOptions struct {
	// Tags restricts the pass to rules carrying one of these tags.
	// Empty means EngineTags.
	Tags []string

	// ExcludeSelectors are CSS selectors whose subtrees are not evaluated.
	ExcludeSelectors []string
}

// tags returns the effective tag filter.
func (o RunOptions) tags() []string {
	if len(o.Tags) == 0 {
		return EngineTags
	}
	return o.Tags
}

// Endpoint is the remote browser service connection settings.
type Endpoint struct {
	// URL is the debugging protocol websocket URL (ws:// or wss://).
	URL string

	// APIKey authenticates against the service. It is sent as the token
	// query parameter of URL.
	APIKey string
}

// CheckEndpoint validates the endpoint configuration without touching the network.
func CheckEndpoint(ep Endpoint) EndpointStatus {
	if strings.TrimSpace(ep.URL) == "" || strings.TrimSpace(ep.APIKey) == "" {
		return EndpointStatusMissing
	}

	u, err := url.Parse(ep.URL)
	if err != nil || u.Host == "" {
		return EndpointStatusInvalid
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return EndpointStatusOK
	default:
		return EndpointStatusInvalid
	}
}

// ProbeEndpoint checks that the endpoint host accepts TCP connections.
// It does not speak the debugging protocol.
func ProbeEndpoint(ctx context.Context, ep Endpoint) EndpointStatus {
	if status := CheckEndpoint(ep); status != EndpointStatusOK {
		return status
	}

	u, err := url.Parse(ep.URL)
	if err != nil {
		return EndpointStatusInvalid
	}

	host := u.Host
	if u.Port() == "" {
		port := "80"
		if strings.EqualFold(u.Scheme, "wss") {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	dialCtx, cancel := context.WithTimeout(ctx, checkEndpointTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return EndpointStatusUnreachable
	}
	_ = conn.Close() //nolint:errcheck // probe connection only

	return EndpointStatusOK
}

// ConnectURL returns the websocket URL with the API key attached as the
// token query parameter. An existing token parameter is replaced.
func (ep Endpoint) ConnectURL() (string, error) {
	if status := CheckEndpoint(ep); status != EndpointStatusOK {
		return "", status.Error()
	}

	u, err := url.Parse(ep.URL)
	if err != nil {
		return "", ErrInvalidEndpoint
	}

	q := u.Query()
	q.Set("token", ep.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
