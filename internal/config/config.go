// Package config provides configuration management for chronodoc.
//
// Config file locations (priority order):
//  1. $CHRONODOC_CONFIG
//  2. ./chronodoc.yaml
//  3. ~/.config/chronodoc/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	IDs      IDConfig       `yaml:"ids"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// IDConfig names the identifier schemes assigned to new documents and nodes.
type IDConfig struct {
	Scheme     string `yaml:"scheme"`
	NodeScheme string `yaml:"node_scheme"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, path, nil
}

// FindConfigPath returns the first config path that exists, or "".
func FindConfigPath() string {
	if env := os.Getenv("CHRONODOC_CONFIG"); env != "" {
		return env
	}
	candidates := []string{"./chronodoc.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "chronodoc", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./chronodoc.db"
	}
	if c.IDs.Scheme == "" {
		c.IDs.Scheme = "ChronoDoc"
	}
	if c.IDs.NodeScheme == "" {
		c.IDs.NodeScheme = "ChronoNode"
	}
}
