// Package config loads kpcli settings from ~/.kpcli/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the kpcli directory.
const FileName = "config.yaml"

// Config holds the recognized options. Absent keys keep their defaults.
type Config struct {
	// CLIProgram is the vault tool binary to invoke.
	CLIProgram string `yaml:"cli_program"`

	// RecursiveListing lists all descendants of a group instead of one
	// level. Recursive output keeps vault-root-relative paths.
	RecursiveListing bool `yaml:"recursive_listing"`

	// EnforceValidPassword re-prompts until the vault tool accepts the
	// master password. When false, failures surface directly to the caller.
	EnforceValidPassword bool `yaml:"enforce_valid_password"`

	// Debug logs raw subprocess traffic, including cleartext passwords and
	// secrets, to stderr. Explicitly unsafe; opt-in only.
	Debug bool `yaml:"debug"`

	// History records visited groups and entries (paths only, no values)
	// in a local database.
	History bool `yaml:"history"`

	// Audit appends vault operations to the tamper-evident audit log.
	Audit bool `yaml:"audit"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CLIProgram:           "keepassxc-cli",
		EnforceValidPassword: true,
		History:              true,
		Audit:                true,
	}
}

// Dir returns the kpcli state directory (~/.kpcli), creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".kpcli")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("config: failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a malformed file is an error rather than a silent fallback.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the configuration from the kpcli state directory.
func LoadDefault() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), err
	}
	return Load(filepath.Join(dir, FileName))
}
