package config

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"time"
)

// SiteConfig holds site-specific configuration for a single host.
// This allows tuning the audit per site, for example excluding a cookie
// banner that is audited separately.
type SiteConfig struct {
	// ExcludePatterns are URL path globs removed before scanning.
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`

	// ExcludeSelectors are CSS selectors the rule engine skips.
	ExcludeSelectors []string `yaml:"excludeSelectors,omitempty"`

	// MaxPages overrides the global page cap for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Timeout overrides the navigation timeout for this site.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// SettleDelay overrides the settle delay for this site.
	// Single page applications often need more time to render.
	SettleDelay time.Duration `yaml:"settleDelay,omitempty"`

	// Screenshots enables full-page screenshots for this site.
	Screenshots bool `yaml:"screenshots,omitempty"`
}

// File represents the structure of the .a11yaudit configuration file.
type File struct {
	// Sites maps hosts (e.g. "www.example.com") to their configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if len(siteConfig.ExcludePatterns) > 0 {
		result.ExcludePatterns = siteConfig.ExcludePatterns
	}
	if len(siteConfig.ExcludeSelectors) > 0 {
		result.ExcludeSelectors = siteConfig.ExcludeSelectors
	}
	if siteConfig.MaxPages > 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.Timeout > 0 {
		result.Timeout = siteConfig.Timeout
	}
	if siteConfig.SettleDelay > 0 {
		result.SettleDelay = siteConfig.SettleDelay
	}
	if siteConfig.Screenshots {
		result.Screenshots = true
	}

	return result
}

// Validate checks the values loaded from a configuration file. Zero values
// mean "not set" and are always valid.
func (cf *File) Validate() error {
	if err := cf.Defaults.validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for _, host := range slices.Sorted(maps.Keys(cf.Sites)) {
		if host == "" || strings.ContainsAny(host, "/ \t") {
			return fmt.Errorf("%w: %q", ErrInvalidSiteHost, host)
		}
		if err := cf.Sites[host].validate(); err != nil {
			return fmt.Errorf("site %s: %w", host, err)
		}
	}
	return nil
}

func (sc SiteConfig) validate() error {
	if sc.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if sc.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if sc.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	for _, p := range sc.ExcludePatterns {
		if _, err := path.Match(p, ""); err != nil || p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidExcludePattern, p)
		}
	}
	for _, s := range sc.ExcludeSelectors {
		if strings.TrimSpace(s) == "" {
			return ErrEmptyExcludeSelector
		}
	}
	return nil
}
