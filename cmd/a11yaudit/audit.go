package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/database"
	"github.com/nao1215/a11yaudit/internal/log"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/pipeline"
	"github.com/nao1215/a11yaudit/internal/report"
	"github.com/spf13/cobra"
)

// defaultEnvFile is read before the environment is consulted, when present.
const defaultEnvFile = ".env"

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit web pages for accessibility issues",
		Long: `Audit scans each URL in a fresh, isolated browser session, runs the axe-core
rule engine scoped to WCAG 2.0/2.1 Level A and AA plus Section 508, and prints a
consolidated compliance report.

Invalid URLs are dropped. At most --max-pages URLs are scanned; the rest are
ignored. A page that fails to load is listed in the report and does not stop
the audit.

The browser service is configured with A11YAUDIT_BROWSER_ENDPOINT and
A11YAUDIT_BROWSER_API_KEY, or with --browser-endpoint and --api-key.

Examples:
  # Audit a single page using the remote browser service
  a11yaudit audit https://www.example.com

  # Audit several pages with a local Chrome and save an HTML report
  a11yaudit audit --local --html -o report.html https://example.com https://example.com/about

  # Skip the cookie banner and save screenshots
  a11yaudit audit --exclude-selector "#cookie-banner" --screenshots ./shots https://example.com

  # Output the full audit as JSON
  a11yaudit audit --json https://example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAuditCmd,
	}

	addBrowserFlags(cmd)

	// Scan settings
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of URLs to scan")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Navigation timeout per page")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after the DOM is ready before running the rule engine")
	cmd.Flags().Duration("deadline", config.DefaultAuditDeadline,
		"Deadline for the whole audit")
	cmd.Flags().String("screenshots", "",
		"Save a full-page screenshot of every scanned page to this directory")
	cmd.Flags().StringSlice("exclude", nil,
		"URL path glob to skip (repeatable)")
	cmd.Flags().StringSlice("exclude-selector", nil,
		"CSS selector the rule engine skips (repeatable)")
	cmd.Flags().StringP("config", "c", "",
		"Path to configuration file (default: ./.a11yaudit, then the user config dir, then ~/.a11yaudit)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the full audit in JSON format")
	cmd.Flags().Bool("html", false,
		"Output a standalone HTML report")
	cmd.Flags().Bool("text", false,
		"Output a plain text report")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the Markdown report to stdout")
	cmd.Flags().Bool("no-db", false,
		"Do not save the audit to the history database")

	return cmd
}

// addBrowserFlags registers the browser connection flags shared by audit and serve.
func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().String("browser-endpoint", "",
		"Remote browser websocket endpoint (default: $"+config.EnvBrowserEndpoint+")")
	cmd.Flags().String("api-key", "",
		"Remote browser API key (default: $"+config.EnvBrowserAPIKey+")")
	cmd.Flags().Bool("local", false,
		"Launch a local headless Chrome instead of the remote service")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable used with --local")
	cmd.Flags().String("axe-script", config.DefaultAxeScriptURL,
		"axe-core script file path or URL")
	cmd.Flags().String("env-file", defaultEnvFile,
		"Environment file read when present")
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runAudit(ctx, cfg, newBrowser(cfg, logger), cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, the environment
// and the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if err := readBrowserFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.SettleDelay, err = cmd.Flags().GetDuration("settle-delay")
	if err != nil {
		return nil, err
	}

	cfg.AuditDeadline, err = cmd.Flags().GetDuration("deadline")
	if err != nil {
		return nil, err
	}

	cfg.ScreenshotDir, err = cmd.Flags().GetString("screenshots")
	if err != nil {
		return nil, err
	}

	cfg.ExcludePatterns, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.ExcludeSelectors, err = cmd.Flags().GetStringSlice("exclude-selector")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.HTMLReport, err = cmd.Flags().GetBool("html")
	if err != nil {
		return nil, err
	}

	cfg.TextReport, err = cmd.Flags().GetBool("text")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Tee, err = cmd.Flags().GetBool("tee")
	if err != nil {
		return nil, err
	}

	// Explicit flags win over the configuration file.
	cfg.Pinned = config.Pinned{
		MaxPages:    cmd.Flags().Changed("max-pages"),
		Timeout:     cmd.Flags().Changed("timeout"),
		SettleDelay: cmd.Flags().Changed("settle-delay"),
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.URLs = args

	return cfg, nil
}

// readBrowserFlags fills the browser connection settings. Flags win over
// the environment, and the environment wins over the env file.
func readBrowserFlags(cmd *cobra.Command, cfg *config.Config) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return err
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg.BrowserEndpoint, err = cmd.Flags().GetString("browser-endpoint")
	if err != nil {
		return err
	}

	cfg.BrowserAPIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return err
	}

	cfg.LocalBrowser, err = cmd.Flags().GetBool("local")
	if err != nil {
		return err
	}

	cfg.ChromePath, err = cmd.Flags().GetString("chrome-path")
	if err != nil {
		return err
	}

	cfg.AxeScript, err = cmd.Flags().GetString("axe-script")
	if err != nil {
		return err
	}

	cfg.ApplyEnv()
	return nil
}

// loadEnvFile loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadSiteConfigs loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty configuration is used when no file is found.
func loadSiteConfigs(configFilePath string) (*config.File, error) {
	configPath, err := config.FindConfigFile(configFilePath)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return &config.File{
			Sites: make(map[string]config.SiteConfig),
		}, nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return cf, nil
}

// newBrowser creates the remote or local browser described by cfg.
func newBrowser(cfg *config.Config, logger *slog.Logger) browser.Browser {
	scripts := browser.NewScriptLoader(cfg.AxeScript,
		browser.WithCacheDir(config.XDGCacheDir()),
		browser.WithScriptLogger(logger),
	)
	opts := []browser.Option{
		browser.WithEngineReadyTimeout(cfg.EngineReadyTimeout),
		browser.WithLogger(logger),
	}

	if cfg.LocalBrowser {
		opts = append(opts, browser.WithExecPath(cfg.ChromePath))
		return browser.NewLocalBrowser(scripts, opts...)
	}

	opts = append(opts, browser.WithProbe(true))
	return browser.NewRemoteBrowser(browser.Endpoint{
		URL:    cfg.BrowserEndpoint,
		APIKey: cfg.BrowserAPIKey,
	}, scripts, opts...)
}

// siteHost returns the host of the first URL that parses, or "".
// Site-specific configuration is selected by it.
func siteHost(urls []string) string {
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err == nil && u.Host != "" {
			return u.Hostname()
		}
	}
	return ""
}

// runAudit runs one audit and writes the report to out or to cfg.ReportFile.
func runAudit(ctx context.Context, cfg *config.Config, b browser.Browser, out io.Writer, logger *slog.Logger) error {
	site := cfg.SiteConfigFor(siteHost(cfg.URLs))

	opts := []pipeline.AuditorOption{
		pipeline.WithAuditorLogger(logger),
		pipeline.WithSettleDelay(cfg.EffectiveSettleDelay(site)),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// History is optional; the audit itself still runs.
			logger.Warn("failed to open history database, audit will not be saved", "error", err)
		} else {
			defer db.Close()
			opts = append(opts, pipeline.WithStore(db))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.AuditDeadline)
	defer cancel()

	logger.Info("starting audit", "urls", len(cfg.URLs), "max_pages", cfg.MaxPages)

	output, err := pipeline.NewAuditor(b, opts...).Run(ctx, pipeline.Request{
		URLs:   cfg.URLs,
		Config: cfg.ScanConfig(site),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("audit did not finish within %s: %w", cfg.AuditDeadline, err)
		}
		return fmt.Errorf("audit failed: %w", err)
	}

	if output.Report.SuccessfulScans == 0 {
		logger.Warn("no page could be scanned", "failed", len(output.Report.FailedScans))
	}

	if err := saveScreenshots(screenshotDir(cfg, output.Report), output.Report, logger); err != nil {
		logger.Warn("failed to save screenshots", "error", err)
	}

	return outputReport(cfg, output.Report, out)
}

// screenshotDir returns where screenshots of an audit are saved. Screenshots
// enabled only by the configuration file go to the data directory.
func screenshotDir(cfg *config.Config, r *model.AuditReport) string {
	if cfg.ScreenshotDir != "" {
		return cfg.ScreenshotDir
	}
	return filepath.Join(config.XDGDataDir(), "screenshots", r.ID)
}

// saveScreenshots writes each captured page screenshot to dir as
// <index>-<host>.jpg. Pages without a screenshot are skipped.
func saveScreenshots(dir string, r *model.AuditReport, logger *slog.Logger) error {
	var saved int
	for i, page := range r.PageResults {
		if len(page.Screenshot) == 0 {
			continue
		}
		if saved == 0 {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create screenshot directory: %w", err)
			}
		}
		path := filepath.Join(dir, screenshotName(i, page.URL))
		if err := os.WriteFile(path, page.Screenshot, 0600); err != nil {
			return fmt.Errorf("failed to write screenshot: %w", err)
		}
		saved++
		logger.Debug("saved screenshot", "url", page.URL, "path", path)
	}
	return nil
}

// screenshotName builds a file name that is safe on every platform.
func screenshotName(index int, pageURL string) string {
	host := "page"
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	host = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, host)
	return fmt.Sprintf("%02d-%s.jpg", index+1, host)
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, r *model.AuditReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list internal URLs and page markup; keep them owner-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w := reportWriter(cfg, output)
	if cfg.ReportFile != "" && cfg.Tee {
		w = report.NewMultiWriter(w, report.NewMarkdownWriter(stdout))
	}
	_, err := w.Write(r)
	return err
}

// reportWriter selects the writer for the configured format.
// Markdown is the default.
func reportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.HTMLReport:
		return report.NewHTMLWriter(output, report.WithDocument())
	case cfg.TextReport:
		return report.NewTextWriter(output)
	default:
		return report.NewMarkdownWriter(output)
	}
}
