// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the shell configuration.
type Config struct {
	// Prompt is the prompt template. The token {cwd} is replaced with
	// the working directory.
	Prompt string `yaml:"prompt"`

	// HistoryFile records executed command lines. Empty disables
	// history.
	HistoryFile string `yaml:"history_file"`

	// DefaultQuotaMB caps mounts created without an explicit quota,
	// in MiB. Zero means unlimited.
	DefaultQuotaMB int64 `yaml:"default_quota_mb"`

	// Color selects styled output: "auto" (default), "always", "never".
	Color string `yaml:"color"`

	// LogLevel is the slog level for the session logger: "debug",
	// "info", "warn" (default), "error".
	LogLevel string `yaml:"log_level"`

	// Mounts are opened at startup. Each prompts for its passphrase.
	Mounts []MountConfig `yaml:"mounts,omitempty"`
}

// MountConfig describes one mount to open at startup.
type MountConfig struct {
	// Name uniquely identifies the mount.
	Name string `yaml:"name"`

	// Container is the sealed container file path.
	Container string `yaml:"container"`

	// MountPoint is the absolute path prefix the mount claims.
	MountPoint string `yaml:"mount_point"`

	// QuotaMB overrides DefaultQuotaMB for this mount.
	QuotaMB int64 `yaml:"quota_mb,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:   "vsh {cwd} $ ",
		Color:    "auto",
		LogLevel: "warn",
	}
}

// Load reads a config file and applies defaults for unset fields.
// With an empty path, the VSH_CONFIG environment variable is consulted;
// with neither, the defaults are returned as-is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VSH_CONFIG")
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values and mount entries.
func (c *Config) Validate() error {
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always, or never, got %q", c.Color)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	if c.DefaultQuotaMB < 0 {
		return fmt.Errorf("default_quota_mb must not be negative")
	}

	seen := make(map[string]bool)
	for i, mount := range c.Mounts {
		if mount.Name == "" {
			return fmt.Errorf("mounts[%d]: name is required", i)
		}
		if seen[mount.Name] {
			return fmt.Errorf("mounts[%d]: duplicate name %q", i, mount.Name)
		}
		seen[mount.Name] = true
		if mount.Container == "" {
			return fmt.Errorf("mount %q: container is required", mount.Name)
		}
		if !strings.HasPrefix(mount.MountPoint, "/") {
			return fmt.Errorf("mount %q: mount_point must be absolute", mount.Name)
		}
		if mount.QuotaMB < 0 {
			return fmt.Errorf("mount %q: quota_mb must not be negative", mount.Name)
		}
	}
	return nil
}
