// Package config manages the global configuration directory and file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0600
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.secretpeek)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// DatabasePath is the SQLite database file for the access history
	DatabasePath string

	// LogFile is the debug log file
	LogFile string
)

// Config holds user-configurable settings loaded from config.yaml.
type Config struct {
	// Editor is the external editor command. Falls back to $EDITOR, then vi.
	Editor string `yaml:"editor,omitempty"`

	// Region is the default AWS region for the aws storage type.
	Region string `yaml:"region,omitempty"`

	// Namespace is the default namespace for the cluster storage type.
	Namespace string `yaml:"namespace,omitempty"`

	// JSONDir is the directory scanned for flat JSON secret files.
	JSONDir string `yaml:"jsonDir,omitempty"`

	// EnvDir is the directory scanned for .env secret files.
	EnvDir string `yaml:"envDir,omitempty"`
}

// EnsureDirs resolves the configuration paths and creates ~/.secretpeek/.
// Commands that only need the paths (the history database, the log file)
// call it directly; Initialize layers config.yaml handling on top.
func EnsureDirs() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".secretpeek")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "secretpeek.db")
	LogFile = filepath.Join(ConfigDir, "secretpeek.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	return nil
}

// Initialize sets up the configuration directory and loads config.yaml,
// creating ~/.secretpeek/ and a default config file on first run.
func Initialize() (*Config, error) {
	if err := EnsureDirs(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		defaultConfig := []byte("# secretpeek configuration\n# editor: vim\n# region: us-east-1\n# namespace: default\n")
		if err := os.WriteFile(ConfigFile, defaultConfig, FilePermissions); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return Load(ConfigFile)
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ResolveEditor returns the editor command to use: config value first,
// then $EDITOR, then vi.
func (c *Config) ResolveEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// ExpandPath expands a leading ~/ to the user home directory and makes
// relative paths absolute against the config directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	return filepath.Join(ConfigDir, path), nil
}
