// Package browser drives the headless browser that renders audited pages
// and hosts the in-page accessibility rule engine (axe-core).
//
// A Browser hands out one Session per URL. Every session is an isolated
// browsing context with its own cookies and storage, and the caller must
// Close it on every exit path. Two implementations are provided, both on
// top of chromedp:
//   - RemoteBrowser connects to a browser service over its debugging
//     protocol websocket, authenticated with an API key
//   - LocalBrowser launches a headless Chrome on this machine
//
// Design decision: The rule engine script is not bundled in the binary.
// ScriptLoader fetches it once from a file or URL, caches downloads in the
// XDG cache directory and shares the in-flight load between concurrent
// audits with singleflight, so a server handling many audits downloads it
// at most once.
package browser
