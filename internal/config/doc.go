// Package config provides configuration structures and utilities for a11yaudit.
// It defines the browser connection settings, per-page scan limits, report
// output preferences and the optional per-site configuration file.
package config
