package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 3 {
			t.Errorf("expected MaxPages to be 3, got %d", cfg.MaxPages)
		}
	})

	t.Run("default Timeout is 25 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 25*time.Second {
			t.Errorf("expected Timeout to be 25s, got %v", cfg.Timeout)
		}
	})

	t.Run("default EngineReadyTimeout is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.EngineReadyTimeout != 5*time.Second {
			t.Errorf("expected EngineReadyTimeout to be 5s, got %v", cfg.EngineReadyTimeout)
		}
	})

	t.Run("default AuditDeadline is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.AuditDeadline != 60*time.Second {
			t.Errorf("expected AuditDeadline to be 60s, got %v", cfg.AuditDeadline)
		}
	})

	t.Run("default AxeScript is the CDN URL", func(t *testing.T) {
		t.Parallel()
		if cfg.AxeScript != DefaultAxeScriptURL {
			t.Errorf("expected AxeScript to be %q, got %q", DefaultAxeScriptURL, cfg.AxeScript)
		}
	})

	t.Run("default LocalBrowser is false", func(t *testing.T) {
		t.Parallel()
		if cfg.LocalBrowser {
			t.Error("expected LocalBrowser to be false")
		}
	})

	t.Run("defaults pass validation", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		modify   func(c *Config)
		expected error
	}{
		{"valid config returns nil", func(_ *Config) {}, nil},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"negative settle delay", func(c *Config) { c.SettleDelay = -time.Second }, ErrInvalidSettleDelay},
		{"zero settle delay is valid", func(c *Config) { c.SettleDelay = 0 }, nil},
		{"zero engine ready timeout", func(c *Config) { c.EngineReadyTimeout = 0 }, ErrInvalidEngineReadyTimeout},
		{"zero audit deadline", func(c *Config) { c.AuditDeadline = 0 }, ErrInvalidAuditDeadline},
		{"json and html", func(c *Config) { c.JSONReport, c.HTMLReport = true, true }, ErrConflictingReportFormats},
		{"html and text", func(c *Config) { c.HTMLReport, c.TextReport = true, true }, ErrConflictingReportFormats},
		{"json only is valid", func(c *Config) { c.JSONReport = true }, nil},
		{"empty axe script", func(c *Config) { c.AxeScript = "" }, ErrNoAxeScript},
		{"no urls is left to the pipeline", func(c *Config) { c.URLs = nil }, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.expected == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestConfigApplyEnv tests reading browser settings from the environment.
// Not parallel because it sets environment variables.
func TestConfigApplyEnv(t *testing.T) {
	t.Setenv(EnvBrowserEndpoint, "wss://browser.example.com")
	t.Setenv(EnvBrowserAPIKey, "secret-key")

	t.Run("fills empty fields", func(t *testing.T) {
		cfg := NewConfig()
		cfg.ApplyEnv()
		if cfg.BrowserEndpoint != "wss://browser.example.com" {
			t.Errorf("unexpected endpoint %q", cfg.BrowserEndpoint)
		}
		if cfg.BrowserAPIKey != "secret-key" {
			t.Errorf("unexpected api key %q", cfg.BrowserAPIKey)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := NewConfig()
		cfg.BrowserEndpoint = "ws://127.0.0.1:9222"
		cfg.ApplyEnv()
		if cfg.BrowserEndpoint != "ws://127.0.0.1:9222" {
			t.Errorf("explicit endpoint was overwritten: %q", cfg.BrowserEndpoint)
		}
		if cfg.BrowserAPIKey != "secret-key" {
			t.Errorf("unexpected api key %q", cfg.BrowserAPIKey)
		}
	})
}

// TestConfigScanConfig tests merging global settings with a site configuration.
func TestConfigScanConfig(t *testing.T) {
	t.Parallel()

	t.Run("globals only", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ExcludePatterns = []string{"/admin/*"}
		sc := cfg.ScanConfig(SiteConfig{})

		if sc.MaxPages != DefaultMaxPages {
			t.Errorf("expected MaxPages %d, got %d", DefaultMaxPages, sc.MaxPages)
		}
		if sc.Timeout != DefaultTimeout {
			t.Errorf("expected Timeout %v, got %v", DefaultTimeout, sc.Timeout)
		}
		if sc.IncludeScreenshots {
			t.Error("expected screenshots disabled")
		}
		if !slices.Equal(sc.ExcludePatterns, []string{"/admin/*"}) {
			t.Errorf("unexpected exclude patterns %v", sc.ExcludePatterns)
		}
	})

	t.Run("site overrides and concatenation", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ExcludeSelectors = []string{"#chat"}
		site := SiteConfig{
			ExcludeSelectors: []string{".cookie-banner"},
			MaxPages:         5,
			Timeout:          40 * time.Second,
			Screenshots:      true,
		}
		sc := cfg.ScanConfig(site)

		if sc.MaxPages != 5 {
			t.Errorf("expected MaxPages 5, got %d", sc.MaxPages)
		}
		if sc.Timeout != 40*time.Second {
			t.Errorf("expected Timeout 40s, got %v", sc.Timeout)
		}
		if !sc.IncludeScreenshots {
			t.Error("expected screenshots enabled by site config")
		}
		if !slices.Equal(sc.ExcludeSelectors, []string{"#chat", ".cookie-banner"}) {
			t.Errorf("unexpected exclude selectors %v", sc.ExcludeSelectors)
		}
		if len(cfg.ExcludeSelectors) != 1 {
			t.Error("global exclude selectors were mutated")
		}
	})

	t.Run("screenshot dir enables screenshots", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ScreenshotDir = t.TempDir()
		if !cfg.ScanConfig(SiteConfig{}).IncludeScreenshots {
			t.Error("expected screenshots enabled")
		}
	})

	t.Run("settle delay override", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if got := cfg.EffectiveSettleDelay(SiteConfig{}); got != DefaultSettleDelay {
			t.Errorf("expected %v, got %v", DefaultSettleDelay, got)
		}
		if got := cfg.EffectiveSettleDelay(SiteConfig{SettleDelay: 5 * time.Second}); got != 5*time.Second {
			t.Errorf("expected 5s, got %v", got)
		}
	})

	t.Run("pinned settings win over the site", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.MaxPages = 1
		cfg.Timeout = 10 * time.Second
		cfg.SettleDelay = 0
		cfg.Pinned = Pinned{MaxPages: true, Timeout: true, SettleDelay: true}
		site := SiteConfig{MaxPages: 5, Timeout: 40 * time.Second, SettleDelay: 5 * time.Second}

		sc := cfg.ScanConfig(site)
		if sc.MaxPages != 1 {
			t.Errorf("expected pinned MaxPages 1, got %d", sc.MaxPages)
		}
		if sc.Timeout != 10*time.Second {
			t.Errorf("expected pinned Timeout 10s, got %v", sc.Timeout)
		}
		if got := cfg.EffectiveSettleDelay(site); got != 0 {
			t.Errorf("expected pinned settle delay 0, got %v", got)
		}
	})
}

// TestFileGetSiteConfig tests the GetSiteConfig method on File.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{MaxPages: 2, ExcludePatterns: []string{"*.pdf"}},
			Sites:    map[string]SiteConfig{},
		}

		got := cf.GetSiteConfig("unknown.example.com")
		if got.MaxPages != 2 {
			t.Errorf("expected default MaxPages 2, got %d", got.MaxPages)
		}
		if !slices.Equal(got.ExcludePatterns, []string{"*.pdf"}) {
			t.Errorf("unexpected patterns %v", got.ExcludePatterns)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{
				MaxPages:         2,
				ExcludePatterns:  []string{"*.pdf"},
				ExcludeSelectors: []string{"#ads"},
				SettleDelay:      time.Second,
			},
			Sites: map[string]SiteConfig{
				"shop.example.com": {
					ExcludePatterns: []string{"/checkout/*"},
					SettleDelay:     4 * time.Second,
					Screenshots:     true,
				},
			},
		}

		got := cf.GetSiteConfig("shop.example.com")
		if got.MaxPages != 2 {
			t.Errorf("zero site MaxPages should keep default, got %d", got.MaxPages)
		}
		if !slices.Equal(got.ExcludePatterns, []string{"/checkout/*"}) {
			t.Errorf("unexpected patterns %v", got.ExcludePatterns)
		}
		if !slices.Equal(got.ExcludeSelectors, []string{"#ads"}) {
			t.Errorf("empty site selectors should keep defaults, got %v", got.ExcludeSelectors)
		}
		if got.SettleDelay != 4*time.Second {
			t.Errorf("expected settle delay 4s, got %v", got.SettleDelay)
		}
		if !got.Screenshots {
			t.Error("expected screenshots enabled")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		cf := &File{Defaults: SiteConfig{MaxPages: 1}}
		if got := cf.GetSiteConfig("a.test"); got.MaxPages != 1 {
			t.Errorf("expected default MaxPages 1, got %d", got.MaxPages)
		}
	})

	t.Run("config without file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		got := cfg.SiteConfigFor("a.test")
		if got.MaxPages != 0 || len(got.ExcludePatterns) != 0 {
			t.Errorf("expected zero SiteConfig, got %+v", got)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.a11yaudit")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yaudit")
		content := `defaults:
  maxPages: 2
  settleDelay: 3s
sites:
  www.example.com:
    timeout: 40s
    screenshots: true
    excludePatterns:
      - "/admin/*"
    excludeSelectors:
      - ".cookie-banner"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Defaults.MaxPages != 2 {
			t.Errorf("expected default maxPages 2, got %d", cf.Defaults.MaxPages)
		}
		if cf.Defaults.SettleDelay != 3*time.Second {
			t.Errorf("expected default settleDelay 3s, got %v", cf.Defaults.SettleDelay)
		}

		site, ok := cf.Sites["www.example.com"]
		if !ok {
			t.Fatal("expected www.example.com in sites")
		}
		if site.Timeout != 40*time.Second {
			t.Errorf("expected site timeout 40s, got %v", site.Timeout)
		}
		if !site.Screenshots {
			t.Error("expected screenshots enabled")
		}
		if len(site.ExcludePatterns) != 1 || len(site.ExcludeSelectors) != 1 {
			t.Errorf("unexpected excludes: %+v", site)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			content string
			wantErr error
		}{
			{"negative default max pages", "defaults:\n  maxPages: -1\n", ErrInvalidMaxPages},
			{"negative site timeout", "sites:\n  example.com:\n    timeout: -5s\n", ErrInvalidTimeout},
			{"negative settle delay", "sites:\n  example.com:\n    settleDelay: -1s\n", ErrInvalidSettleDelay},
			{"malformed pattern", "defaults:\n  excludePatterns: [\"/admin/[\"]\n", ErrInvalidExcludePattern},
			{"blank selector", "defaults:\n  excludeSelectors: [\" \"]\n", ErrEmptyExcludeSelector},
			{"url as site key", "sites:\n  https://example.com/:\n    maxPages: 2\n", ErrInvalidSiteHost},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				configPath := filepath.Join(t.TempDir(), ".a11yaudit")
				if err := os.WriteFile(configPath, []byte(tt.content), 0600); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
				if _, err := LoadConfigFile(configPath); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(configPath, []byte("defaults:\n  maxPage: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for misspelled key")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(configPath, nil, 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(configPath, []byte("defaults:\n  maxPages: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result, err := FindConfigFile(configPath)
		if err != nil || result != configPath {
			t.Errorf("expected %q, got %q (%v)", configPath, result, err)
		}
	})

	t.Run("missing explicit path is an error", func(t *testing.T) {
		if _, err := FindConfigFile("/nonexistent/path/config.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("directory is not a config file", func(t *testing.T) {
		if _, err := FindConfigFile(t.TempDir()); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("finds config in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		result, err := FindConfigFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(result) != DefaultConfigFile {
			t.Errorf("expected %s to be found, got %q", DefaultConfigFile, result)
		}
	})

	t.Run("finds user config in XDG config dir", func(t *testing.T) {
		// Restore xdg after the environment is restored.
		t.Cleanup(xdg.Reload)
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		xdg.Reload()
		t.Chdir(t.TempDir())

		userConfig := UserConfigPath()
		if err := os.MkdirAll(filepath.Dir(userConfig), 0750); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		if err := os.WriteFile(userConfig, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result, err := FindConfigFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != userConfig {
			t.Errorf("expected %q, got %q", userConfig, result)
		}
		if paths := SearchPaths(); len(paths) < 2 || paths[1] != userConfig {
			t.Errorf("expected user config second in search order, got %v", paths)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func() string{
		"data":   XDGDataDir,
		"config": XDGConfigDir,
		"cache":  XDGCacheDir,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := fn()
			if dir == "" {
				t.Errorf("expected non-empty XDG %s dir", name)
			}
			if filepath.Base(dir) != AppName {
				t.Errorf("expected dir to end with %s, got %s", AppName, dir)
			}
		})
	}
}
