package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("default mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`theme: light
source:
  kind: http
  address: https://grid.example.com/api
  session_cookie: abc
notifications:
  std_delay: 150ms
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Theme != ThemeLight || cfg.Source.Kind != SourceHTTP || cfg.Source.Session != "abc" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Notifications.StdDelay != 150*time.Millisecond {
		t.Fatalf("expected std delay 150ms, got %s", cfg.Notifications.StdDelay)
	}
	if cfg.Notifications.ExitDelay != 10*time.Second {
		t.Fatalf("expected exit delay default to survive, got %s", cfg.Notifications.ExitDelay)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != LogConsole {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadRejectsDirectoryAndGarbage(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error reading a directory")
	}

	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("source: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Theme = ThemeDark
	cfg.Source = Source{Kind: SourceFiles, Manifest: "m.json", Roster: "nodes.yaml", HotfixDir: "hotfixes", Timeout: 5 * time.Second}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"theme", func(c *Config) { c.Theme = "neon" }},
		{"kind", func(c *Config) { c.Source.Kind = "ftp" }},
		{"http address", func(c *Config) { c.Source = Source{Kind: SourceHTTP, Address: "grid.example.com"} }},
		{"grpc address", func(c *Config) { c.Source = Source{Kind: SourceGRPC} }},
		{"files paths", func(c *Config) { c.Source = Source{Kind: SourceFiles, Manifest: "m.json"} }},
		{"sqlite database", func(c *Config) { c.Source = Source{Kind: SourceSQLite} }},
		{"timeout", func(c *Config) { c.Source.Timeout = -time.Second }},
		{"std delay", func(c *Config) { c.Notifications.StdDelay = 0 }},
		{"exit delay", func(c *Config) { c.Notifications.ExitDelay = -1 }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error for %+v", cfg)
			}
		})
	}
}

func TestOverlayAppliesEnvAndFlags(t *testing.T) {
	t.Setenv("HOTFIX_SOURCE_ADDRESS", "10.0.0.5:50061")
	t.Setenv("HOTFIX_NOTIFICATIONS_EXIT_DELAY", "3s")

	v := NewViper()
	v.Set(KeyLogLevel, "warn")

	cfg := Overlay(Default(), v)
	if cfg.Source.Address != "10.0.0.5:50061" {
		t.Fatalf("expected env address, got %q", cfg.Source.Address)
	}
	if cfg.Notifications.ExitDelay != 3*time.Second {
		t.Fatalf("expected env exit delay, got %s", cfg.Notifications.ExitDelay)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected flag log level, got %q", cfg.Log.Level)
	}
	if cfg.Source.Kind != SourceGRPC {
		t.Fatalf("expected unset keys to keep file values, got %q", cfg.Source.Kind)
	}
	if got := Overlay(cfg, nil); got != cfg {
		t.Fatalf("expected nil viper to leave config unchanged")
	}
}
