package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Source kinds.
const (
	SourceHTTP   = "http"
	SourceGRPC   = "grpc"
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// Config captures persisted user preferences and where hotfix data comes from.
type Config struct {
	Theme         string        `yaml:"theme"`
	Source        Source        `yaml:"source"`
	Notifications Notifications `yaml:"notifications"`
	Log           Log           `yaml:"log"`
	Server        Server        `yaml:"server"`
}

// Source selects the inventory backend used by the dashboard.
type Source struct {
	Kind string `yaml:"kind"`
	// Address is a base URL for http and a host:port for grpc.
	Address string        `yaml:"address"`
	Session string        `yaml:"session_cookie,omitempty"`
	CAFile  string        `yaml:"ca_file,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Manifest  string `yaml:"manifest,omitempty"`
	Roster    string `yaml:"roster,omitempty"`
	HotfixDir string `yaml:"hotfix_dir,omitempty"`
	Database  string `yaml:"database,omitempty"`
}

// Notifications tunes the alert stagger.
type Notifications struct {
	StdDelay  time.Duration `yaml:"std_delay"`
	ExitDelay time.Duration `yaml:"exit_delay"`
}

// Log configures the file logger. An empty File discards logs.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Server configures the inventory server started by the serve command.
type Server struct {
	Listen   string `yaml:"listen"`
	Session  string `yaml:"session,omitempty"`
	CertPath string `yaml:"cert_path,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// Load reads configuration data from the provided path. If the file does not exist,
// a default configuration is returned without an error.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := ResolvePath(path)
	if err != nil {
		return cfg, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating the parent
// directory when needed.
func Save(path string, cfg Config) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(resolved, 0o600)
}

// Default returns a usable configuration when no file exists yet.
func Default() Config {
	return Config{
		Theme: ThemeAuto,
		Source: Source{
			Kind:    SourceGRPC,
			Address: "127.0.0.1:50061",
			Timeout: 30 * time.Second,
		},
		Notifications: Notifications{
			StdDelay:  200 * time.Millisecond,
			ExitDelay: 10 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: LogConsole,
		},
		Server: Server{
			Listen: "127.0.0.1:50061",
		},
	}
}

// Validate reports the first problem that would prevent the dashboard from
// starting.
func Validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Theme)) {
	case "", ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("theme %q: expected auto, dark or light", cfg.Theme)
	}

	src := cfg.Source
	switch src.Kind {
	case SourceHTTP:
		if !strings.HasPrefix(src.Address, "http://") && !strings.HasPrefix(src.Address, "https://") {
			return fmt.Errorf("source address %q: expected an http or https url", src.Address)
		}
	case SourceGRPC:
		if strings.TrimSpace(src.Address) == "" {
			return errors.New("source address is required for grpc")
		}
	case SourceFiles:
		if src.Manifest == "" || src.Roster == "" || src.HotfixDir == "" {
			return errors.New("files source requires manifest, roster and hotfix_dir")
		}
	case SourceSQLite:
		if src.Database == "" {
			return errors.New("sqlite source requires database")
		}
	default:
		return fmt.Errorf("source kind %q: expected http, grpc, files or sqlite", src.Kind)
	}
	if src.Timeout < 0 {
		return fmt.Errorf("source timeout %s must not be negative", src.Timeout)
	}

	if cfg.Notifications.StdDelay <= 0 {
		return fmt.Errorf("notifications std_delay %s must be positive", cfg.Notifications.StdDelay)
	}
	if cfg.Notifications.ExitDelay <= 0 {
		return fmt.Errorf("notifications exit_delay %s must be positive", cfg.Notifications.ExitDelay)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q: expected debug, info, warn or error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case LogConsole, LogJSON:
	default:
		return fmt.Errorf("log format %q: expected console or json", cfg.Log.Format)
	}
	return nil
}

// DefaultPath returns the standard configuration path within the user's
// XDG config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "hotfix-tui", "config.yaml"), nil
}

// ResolvePath returns path, or the default path when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultPath()
}
