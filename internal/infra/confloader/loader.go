package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "REHASHKV_"

// Source names reported by Loader.Sources.
const (
	SourceFile      = "file"
	SourceEnv       = "env"
	SourceOverrides = "overrides"
)

// Loader layers configuration sources over a pre-filled target. Each Load
// starts from an empty key space, so it can be called again to reload.
type Loader struct {
	envPrefix string
	filePath  string
	overrides map[string]any
	sources   []string
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file path. An empty path means no file.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets dotted keys ("server.listen") applied after the
// environment, typically from command-line flags.
func WithOverrides(m map[string]any) Option {
	return func(l *Loader) {
		l.overrides = m
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load unmarshals the configured sources into target. Fields of target
// that no source sets keep their current values, so target carries the
// defaults. Later sources win: file, then environment, then overrides.
func (l *Loader) Load(target any) error {
	k := koanf.New(".")
	var sources []string

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
		sources = append(sources, SourceFile)
	}

	envVars := 0
	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := l.envKey(s)
		if key != "" {
			envVars++
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if envVars > 0 {
		sources = append(sources, SourceEnv)
	}

	if len(l.overrides) > 0 {
		if err := k.Load(mapProvider(l.overrides), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		sources = append(sources, SourceOverrides)
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	l.sources = sources
	return nil
}

// Sources returns the sources applied by the last successful Load.
func (l *Loader) Sources() []string {
	return l.sources
}

// envKey maps PREFIX_SECTION_KEY to section.key. Only the first underscore
// after the prefix separates section from key, so keys may contain
// underscores: REHASHKV_STORAGE_MIGRATE_BUDGET -> storage.migrate_budget.
// Variables without a section part (REHASHKV_SERVER, used by the CLI) are
// ignored.
func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}
