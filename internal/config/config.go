package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/a11yaudit/internal/model"
)

// Default configuration values.
// The scan limits are sized so that a full audit of DefaultMaxPages pages
// fits inside DefaultAuditDeadline.
const (
	// DefaultMaxPages caps how many URLs one audit scans.
	// URLs beyond the cap are dropped without error.
	DefaultMaxPages = 3

	// DefaultTimeout bounds page navigation for each URL.
	DefaultTimeout = 25 * time.Second

	// DefaultSettleDelay is how long to wait after the DOM is ready so that
	// client-side rendering can finish before the rule engine runs.
	DefaultSettleDelay = 2 * time.Second

	// DefaultEngineReadyTimeout bounds the wait for the injected rule engine
	// to become available in the page.
	DefaultEngineReadyTimeout = 5 * time.Second

	// DefaultAuditDeadline is the overall deadline for one audit.
	// Three pages at the default navigation timeout plus settle and engine
	// time stay under it.
	DefaultAuditDeadline = 60 * time.Second

	// DefaultAxeScriptURL is where the rule engine script is downloaded from
	// when no local copy is configured. The download is cached in XDGCacheDir.
	DefaultAxeScriptURL = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

	// DefaultListenAddr is the address the HTTP API listens on.
	DefaultListenAddr = "127.0.0.1:8080"

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yaudit"

	// EnvBrowserEndpoint names the environment variable holding the remote
	// browser debugging endpoint (ws:// or wss:// URL).
	EnvBrowserEndpoint = "A11YAUDIT_BROWSER_ENDPOINT"

	// EnvBrowserAPIKey names the environment variable holding the API key
	// for the remote browser service.
	EnvBrowserAPIKey = "A11YAUDIT_BROWSER_API_KEY" //nolint:gosec // variable name, not a credential
)

// Config holds all configuration options for a11yaudit.
// This struct is populated from CLI flags, the environment and the optional
// config file, then passed through the application by dependency injection.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable.
type Config struct {
	// BrowserEndpoint is the websocket debugging endpoint of the remote
	// browser service. It is authenticated with BrowserAPIKey.
	BrowserEndpoint string

	// BrowserAPIKey authenticates against the remote browser service.
	// It is never logged.
	BrowserAPIKey string

	// LocalBrowser launches a local headless Chrome instead of connecting
	// to the remote service. Intended for development.
	LocalBrowser bool

	// ChromePath overrides the Chrome executable used by LocalBrowser.
	ChromePath string

	// AxeScript is a file path or http(s) URL of the axe-core script.
	AxeScript string

	// MaxPages caps the number of URLs scanned per audit.
	MaxPages int

	// Timeout bounds page navigation for each URL.
	Timeout time.Duration

	// SettleDelay is the wait after DOM readiness before the rule pass.
	SettleDelay time.Duration

	// EngineReadyTimeout bounds the wait for the injected rule engine.
	EngineReadyTimeout time.Duration

	// AuditDeadline bounds one whole audit.
	AuditDeadline time.Duration

	// ScreenshotDir enables full-page screenshots and is where they are saved.
	// Empty disables screenshots.
	ScreenshotDir string

	// ExcludePatterns are URL path globs removed from the URL list before scanning.
	ExcludePatterns []string

	// ExcludeSelectors are CSS selectors the rule engine skips on every page.
	ExcludeSelectors []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .a11yaudit in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport outputs the full audit as JSON.
	// Mutually exclusive with the other report formats.
	JSONReport bool

	// HTMLReport outputs a sanitized, styled HTML document.
	// Mutually exclusive with the other report formats.
	HTMLReport bool

	// TextReport outputs plain text.
	// Mutually exclusive with the other report formats.
	TextReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Tee also prints the Markdown report to stdout when ReportFile is set.
	Tee bool

	// URLs are the raw URL arguments. They are validated by the audit pipeline.
	URLs []string

	// DBDir is the directory path for storing the SQLite audit history.
	DBDir string

	// SaveToDB indicates whether to save audits to the database.
	SaveToDB bool

	// ListenAddr is the HTTP API listen address used by the serve command.
	ListenAddr string

	// Pinned marks settings given explicitly on the command line.
	// The configuration file does not override pinned settings.
	Pinned Pinned
}

// Pinned lists the settings a site configuration may override unless the
// user set them explicitly.
type Pinned struct {
	MaxPages    bool
	Timeout     bool
	SettleDelay bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, page cap).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		AxeScript:          DefaultAxeScriptURL,
		MaxPages:           DefaultMaxPages,
		Timeout:            DefaultTimeout,
		SettleDelay:        DefaultSettleDelay,
		EngineReadyTimeout: DefaultEngineReadyTimeout,
		AuditDeadline:      DefaultAuditDeadline,
		ListenAddr:         DefaultListenAddr,
	}
}

// ApplyEnv fills the browser connection settings from the environment.
// Values already set (for example from flags) are kept.
func (c *Config) ApplyEnv() {
	if c.BrowserEndpoint == "" {
		c.BrowserEndpoint = os.Getenv(EnvBrowserEndpoint)
	}
	if c.BrowserAPIKey == "" {
		c.BrowserAPIKey = os.Getenv(EnvBrowserAPIKey)
	}
}

// SiteConfigFor returns the merged site configuration for a host.
// A Config without a loaded config file yields the zero SiteConfig.
func (c *Config) SiteConfigFor(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}

// ScanConfig builds the per-audit scan options from the global settings
// and a site configuration. Non-zero site values override the globals and
// exclude lists are concatenated. Pinned settings keep the global value.
func (c *Config) ScanConfig(site SiteConfig) model.ScanConfig {
	sc := model.ScanConfig{
		MaxPages:           c.MaxPages,
		Timeout:            c.Timeout,
		IncludeScreenshots: c.ScreenshotDir != "" || site.Screenshots,
		ExcludePatterns:    append(append([]string{}, c.ExcludePatterns...), site.ExcludePatterns...),
		ExcludeSelectors:   append(append([]string{}, c.ExcludeSelectors...), site.ExcludeSelectors...),
	}
	if site.MaxPages > 0 && !c.Pinned.MaxPages {
		sc.MaxPages = site.MaxPages
	}
	if site.Timeout > 0 && !c.Pinned.Timeout {
		sc.Timeout = site.Timeout
	}
	return sc
}

// EffectiveSettleDelay returns the settle delay for a site.
func (c *Config) EffectiveSettleDelay(site SiteConfig) time.Duration {
	if site.SettleDelay > 0 && !c.Pinned.SettleDelay {
		return site.SettleDelay
	}
	return c.SettleDelay
}

// XDGDataDir returns the XDG data directory for a11yaudit.
// On Linux: ~/.local/share/a11yaudit
// On macOS: ~/Library/Application Support/a11yaudit
// On Windows: %LOCALAPPDATA%\a11yaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for a11yaudit.
// The downloaded rule engine script is cached here.
// On Linux: ~/.cache/a11yaudit
// On macOS: ~/Library/Caches/a11yaudit
// On Windows: %LOCALAPPDATA%\a11yaudit\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// URL validity is not checked here; the audit pipeline owns that so the
// CLI and the HTTP API report the same error.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}

	if c.EngineReadyTimeout <= 0 {
		return ErrInvalidEngineReadyTimeout
	}

	if c.AuditDeadline <= 0 {
		return ErrInvalidAuditDeadline
	}

	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.HTMLReport, c.TextReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.AxeScript == "" {
		return ErrNoAxeScript
	}

	return nil
}
