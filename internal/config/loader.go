package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the current
// directory and in the home directory.
const DefaultConfigFile = ".a11yaudit"

// UserConfigFile is the configuration file name inside XDGConfigDir.
const UserConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// UserConfigPath returns the per-user configuration file path.
// On Linux: ~/.config/a11yaudit/config.yaml
func UserConfigPath() string {
	return filepath.Join(XDGConfigDir(), UserConfigFile)
}

// SearchPaths returns the locations checked when no configuration file is
// given, highest priority first: the project file in the current directory,
// the per-user XDG file, then the legacy dotfile in the home directory.
func SearchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, UserConfigPath())
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

// FindConfigFile returns the configuration file to load.
// An explicit configPath must exist; otherwise ErrConfigNotFound is returned.
// Without one, the first existing file of SearchPaths is returned, or an
// empty string when there is none.
func FindConfigFile(configPath string) (string, error) {
	if configPath != "" {
		if !isRegularFile(configPath) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return configPath, nil
	}

	for _, p := range SearchPaths() {
		if isRegularFile(p) {
			return p, nil
		}
	}
	return "", nil
}

// LoadConfigFile loads and validates site configurations from a YAML file.
// Unknown keys are rejected so that a misspelled setting does not silently
// fall back to its default. An empty file yields an empty configuration.
func LoadConfigFile(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	defer f.Close()

	var cf File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
