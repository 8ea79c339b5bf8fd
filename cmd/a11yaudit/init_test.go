package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/nao1215/a11yaudit/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	if cmd.Use != "init" {
		t.Errorf("expected use 'init', got %q", cmd.Use)
	}

	output := cmd.Flags().Lookup("output")
	if output == nil {
		t.Fatal("expected output flag")
	}
	if output.Shorthand != "o" {
		t.Errorf("expected shorthand 'o', got %q", output.Shorthand)
	}
	if output.DefValue != configFileName {
		t.Errorf("expected default %q, got %q", configFileName, output.DefValue)
	}

	force := cmd.Flags().Lookup("force")
	if force == nil {
		t.Fatal("expected force flag")
	}
	if force.Shorthand != "f" {
		t.Errorf("expected shorthand 'f', got %q", force.Shorthand)
	}
}

// TestRunInitCmd tests writing the configuration template.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "a11yaudit.yaml")
		cmd := NewInitCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", path})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Created configuration file") {
			t.Errorf("unexpected output: %q", buf.String())
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			t.Errorf("expected owner-only permissions, got %o", perm)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("template does not parse: %v", err)
		}
		if got := cf.GetSiteConfig("www.example.com").ExcludePatterns; len(got) != 1 || got[0] != "/logout*" {
			t.Errorf("expected default exclude pattern, got %v", got)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(path, []byte("keep"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", path})
		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for existing file")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "keep" {
			t.Error("existing file was modified")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".a11yaudit")
		if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", path, "-f"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "defaults:") {
			t.Error("expected template content")
		}
	})
}

// TestRunInitCmdUser changes the process environment and cannot run in parallel.
func TestRunInitCmdUser(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	cmd := NewInitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--user"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := config.UserConfigPath()
	if _, err := config.LoadConfigFile(path); err != nil {
		t.Fatalf("user config not written: %v", err)
	}

	t.Chdir(t.TempDir())
	found, err := config.FindConfigFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != path {
		t.Errorf("expected the user config to be discovered, got %q", found)
	}
}
