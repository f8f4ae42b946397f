package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CLIConfig is the configuration for rehashkv-cli.
type CLIConfig struct {
	Server  string        `yaml:"server"`
	Admin   string        `yaml:"admin"`
	Output  string        `yaml:"output"` // table, json, yaml
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:6380",
		Admin:   "127.0.0.1:9380",
		Output:  "table",
		Timeout: 5 * time.Second,
	}
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rehashkv", "cli.yaml")
}

// Load loads CLI configuration from path. A missing file yields the
// defaults. Keys absent from the file keep their default values.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cli config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse cli config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
