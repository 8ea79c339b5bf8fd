package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/a11yaudit.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new a11yaudit configuration file",
		Long: `Initialize creates a new .a11yaudit configuration file in the current directory.

The generated file includes:
- Default scan settings (page cap, timeouts, settle delay)
- Commented examples for site-specific configurations
- Documentation for all available options

Examples:
  # Create .a11yaudit in current directory
  a11yaudit init

  # Create config file at a specific path
  a11yaudit init -o myconfig.yaml

  # Create the per-user config file (~/.config/a11yaudit/config.yaml on Linux)
  a11yaudit init --user

  # Force overwrite existing file
  a11yaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("user", false,
		"Write the per-user configuration file in the XDG config directory")
	cmd.MarkFlagsMutuallyExclusive("output", "user")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	user, err := cmd.Flags().GetBool("user")
	if err != nil {
		return err
	}
	if user {
		outputPath = config.UserConfigPath()
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/a11yaudit.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure site-specific settings such as:")
	fmt.Fprintln(out, "  - URL patterns to exclude from audits")
	fmt.Fprintln(out, "  - CSS selectors the rule engine should skip")
	fmt.Fprintln(out, "  - Settle delay for client-rendered pages")

	return nil
}
