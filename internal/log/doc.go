// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API keys, tokens, cookies)
//   - Redaction of credentials embedded in URLs, such as the token query
//     parameter of a remote browser endpoint
//   - Configurable log levels with verbose mode support
//
// # Security Features
//
// The browser service API key travels inside the websocket endpoint URL, and
// the browser driver echoes that URL in its own errors. SecureHandler masks
// the credential part of such URLs wherever they appear in a string or error
// attribute, while keeping the host visible for troubleshooting.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("connecting",
//	    "endpoint", "wss://browser.example.com?token=abc", // token is masked
//	)
//	slog.SetDefault(logger)
package log
