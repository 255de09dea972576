// Package cli holds the cobra commands of hotfix-tui.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/app"
	"github.com/adamkadaban/hotfix-tui/internal/config"
	"github.com/adamkadaban/hotfix-tui/internal/logging"
)

// env is shared by every command of one invocation.
type env struct {
	v          *viper.Viper
	configPath string
}

// NewRootCommand builds the command tree. The root command runs the dashboard.
func NewRootCommand() *cobra.Command {
	e := &env{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "hotfix-tui",
		Short: "Terminal dashboard for hotfix status across managed nodes",
		Long: `hotfix-tui reconciles the published hotfix catalog against each node's
install history and shows which hotfixes are installed, reverted or missing.

Key bindings:
  Tab / Shift+Tab  Switch views
  / f 1-7 c        Search, filter, sort and clear the hotfix table
  Ctrl+N           Focus the next alert (holds it on screen)
  Ctrl+R           Reload catalog and node data
  Ctrl+T           Toggle light and dark theme
  Ctrl+C           Quit`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := e.load()
			if err != nil {
				return err
			}
			logger, err := e.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return app.Run(cmd.Context(), app.Options{Config: cfg, ConfigPath: path, Logger: logger})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&e.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/hotfix-tui/config.yaml)")
	flags.String("source", "", "inventory source: http, grpc, files or sqlite")
	flags.String("address", "", "backend url (http) or host:port (grpc)")
	flags.String("session", "", "session token sent to the backend")
	flags.String("ca-file", "", "CA bundle for TLS to a grpc backend")
	flags.Duration("timeout", 0, "per-request fetch timeout")
	flags.String("manifest", "", "manifest file (files source)")
	flags.String("roster", "", "roster file (files source)")
	flags.String("hotfix-dir", "", "directory of hotfix_<hostname> files (files source)")
	flags.String("database", "", "SQLite inventory database (sqlite source)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: console or json")
	flags.String("log-file", "", "log file, - for stderr (default discards; bare flag uses the cache dir)")
	if def, err := logging.DefaultFile(); err == nil {
		flags.Lookup("log-file").NoOptDefVal = def
	}
	cmd.Flags().String("theme", "", "override theme (auto, dark, light)")

	e.bind(flags, map[string]string{
		"source":     config.KeySourceKind,
		"address":    config.KeySourceAddress,
		"session":    config.KeySourceSession,
		"ca-file":    config.KeySourceCAFile,
		"timeout":    config.KeySourceTimeout,
		"manifest":   config.KeySourceManifest,
		"roster":     config.KeySourceRoster,
		"hotfix-dir": config.KeySourceHotfixDir,
		"database":   config.KeySourceDatabase,
		"log-level":  config.KeyLogLevel,
		"log-format": config.KeyLogFormat,
		"log-file":   config.KeyLogFile,
	})
	e.bind(cmd.Flags(), map[string]string{"theme": config.KeyTheme})

	cmd.AddCommand(newServeCommand(e), newValidateCommand(), newImportCommand(e))
	return cmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (e *env) bind(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := e.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// load reads the config file and applies flag and environment overrides.
func (e *env) load() (config.Config, string, error) {
	path, err := config.ResolvePath(e.configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("resolve config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	cfg = config.Overlay(cfg, e.v)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

func (e *env) logger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, nil
}
