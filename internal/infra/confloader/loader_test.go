package confloader

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type testConfig struct {
	Server struct {
		Listen         string `koanf:"listen"`
		Engine         string `koanf:"engine"`
		StrictCommands bool   `koanf:"strict_commands"`
	} `koanf:"server"`
	Storage struct {
		MigrateBudget int `koanf:"migrate_budget"`
	} `koanf:"storage"`
}

func defaults() *testConfig {
	var cfg testConfig
	cfg.Server.Listen = "127.0.0.1:6380"
	cfg.Server.Engine = "reactor"
	cfg.Storage.MigrateBudget = 2
	return &cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// ============================================================
// Layering
// ============================================================

func TestLoader_Layers(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: "from-file:6380"
  engine: gnet
storage:
  migrate_budget: 4
`)

	tests := []struct {
		name        string
		env         map[string]string
		overrides   map[string]any
		wantListen  string
		wantEngine  string
		wantBudget  int
		wantSources []string
	}{
		{
			name:        "file only",
			wantListen:  "from-file:6380",
			wantEngine:  "gnet",
			wantBudget:  4,
			wantSources: []string{SourceFile},
		},
		{
			name:        "env over file",
			env:         map[string]string{"REHASHKV_SERVER_LISTEN": "from-env:1", "REHASHKV_STORAGE_MIGRATE_BUDGET": "8"},
			wantListen:  "from-env:1",
			wantEngine:  "gnet",
			wantBudget:  8,
			wantSources: []string{SourceFile, SourceEnv},
		},
		{
			name:        "overrides over env",
			env:         map[string]string{"REHASHKV_SERVER_LISTEN": "from-env:1"},
			overrides:   map[string]any{"server.listen": "from-flag:2", "server.engine": "reactor"},
			wantListen:  "from-flag:2",
			wantEngine:  "reactor",
			wantBudget:  4,
			wantSources: []string{SourceFile, SourceEnv, SourceOverrides},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := defaults()
			l := NewLoader(WithConfigFile(path), WithOverrides(tt.overrides))
			if err := l.Load(cfg); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Server.Listen != tt.wantListen {
				t.Errorf("listen = %q, want %q", cfg.Server.Listen, tt.wantListen)
			}
			if cfg.Server.Engine != tt.wantEngine {
				t.Errorf("engine = %q, want %q", cfg.Server.Engine, tt.wantEngine)
			}
			if cfg.Storage.MigrateBudget != tt.wantBudget {
				t.Errorf("migrate_budget = %d, want %d", cfg.Storage.MigrateBudget, tt.wantBudget)
			}
			if !slices.Equal(l.Sources(), tt.wantSources) {
				t.Errorf("Sources() = %v, want %v", l.Sources(), tt.wantSources)
			}
		})
	}
}

func TestLoader_KeepsDefaults(t *testing.T) {
	cfg := defaults()
	l := NewLoader(WithOverrides(map[string]any{"server.strict_commands": true}))
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Server.StrictCommands {
		t.Error("strict_commands = false, want true")
	}
	if cfg.Server.Listen != "127.0.0.1:6380" || cfg.Storage.MigrateBudget != 2 {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoader_IgnoresEnvWithoutSection(t *testing.T) {
	// The CLI reads REHASHKV_SERVER and REHASHKV_ADMIN; they must not
	// replace whole sections of the server configuration.
	t.Setenv("REHASHKV_SERVER", "10.0.0.1:6380")
	t.Setenv("REHASHKV_ADMIN", "10.0.0.1:9380")

	cfg := defaults()
	l := NewLoader()
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:6380" {
		t.Errorf("listen = %q, want default", cfg.Server.Listen)
	}
	if len(l.Sources()) != 0 {
		t.Errorf("Sources() = %v, want none", l.Sources())
	}
}

func TestLoader_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_ENGINE", "gnet")
	t.Setenv("REHASHKV_SERVER_ENGINE", "ignored")

	cfg := defaults()
	if err := NewLoader(WithEnvPrefix("MYAPP_")).Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Engine != "gnet" {
		t.Errorf("engine = %q, want gnet", cfg.Server.Engine)
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, "server:\n  engine: gnet\n")
	l := NewLoader(WithConfigFile(path))

	cfg := defaults()
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Engine != "gnet" {
		t.Fatalf("engine = %q, want gnet", cfg.Server.Engine)
	}

	// A key removed from the file falls back to the default on reload.
	if err := os.WriteFile(path, []byte("storage:\n  migrate_budget: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg = defaults()
	if err := l.Load(cfg); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if cfg.Server.Engine != "reactor" || cfg.Storage.MigrateBudget != 3 {
		t.Errorf("after reload: engine = %q, budget = %d", cfg.Server.Engine, cfg.Storage.MigrateBudget)
	}
}

// ============================================================
// Errors
// ============================================================

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/nonexistent/config.yaml"},
		{"invalid yaml", writeConfig(t, "server: [unclosed")},
		{"type mismatch", writeConfig(t, "storage:\n  migrate_budget: lots\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(WithConfigFile(tt.path))
			if err := l.Load(defaults()); err == nil {
				t.Error("Load() expected error")
			}
			if l.Sources() != nil {
				t.Errorf("Sources() = %v after failed Load", l.Sources())
			}
		})
	}
}
