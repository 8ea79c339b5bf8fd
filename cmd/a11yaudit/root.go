// Package main provides the entry point for the a11yaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11yaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yaudit",
		Short: "Automated accessibility audits against WCAG 2.1 AA and Section 508",
		Long: `a11yaudit scans web pages in an isolated headless browser, runs the axe-core
rule engine on each page and produces a consolidated compliance report.

Issues are deduplicated across pages, mapped to WCAG 2.1 Level A/AA success
criteria and Section 508 provisions, and summarized with an overall status.
Automated testing cannot find every barrier: every report carries a manual
verification checklist.

By default a11yaudit connects to a remote browser service configured with
A11YAUDIT_BROWSER_ENDPOINT and A11YAUDIT_BROWSER_API_KEY (a .env file in the
current directory is read when present). Use --local to launch a local Chrome.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
