package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adamkadaban/hotfix-tui/internal/config"
	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/keymap"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/session"
	"github.com/adamkadaban/hotfix-tui/internal/settings"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	root "github.com/adamkadaban/hotfix-tui/internal/ui/root"
)

// Options control how the application is executed.
type Options struct {
	Config config.Config
	// ConfigPath is where theme changes are saved. Empty disables saving.
	ConfigPath string
	Logger     *zap.Logger
	// ProgramOptions are appended to the Bubble Tea program options.
	ProgramOptions []tea.ProgramOption
}

// Run opens the configured source and runs the dashboard until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	src, closeSrc, err := OpenSource(cfg.Source, logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if err := closeSrc(); err != nil {
			logger.Warn("close source", zap.Error(err))
		}
	}()

	runnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := state.NewStore()
	sess := session.New(session.Options{
		Store: store,
		Scheduler: notify.Options{
			StdDelay:  cfg.Notifications.StdDelay,
			ExitDelay: cfg.Notifications.ExitDelay,
			Logger:    logger,
		},
		Logger: logger,
	})
	dispatcher := controller.New(runnerCtx, sess, src, controller.Options{
		Timeout: cfg.Source.Timeout,
		Logger:  logger,
	})

	km := keymap.DefaultGlobal()
	rootOpts := root.Options{
		Theme:      theme.New(theme.Options{Preferred: cfg.Theme}),
		KeyMap:     &km,
		Controller: dispatcher,
	}
	if opts.ConfigPath != "" {
		rootOpts.Settings = settings.NewManager(opts.ConfigPath, cfg)
	}
	rootModel := root.New(store, rootOpts)

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(runnerCtx)}, opts.ProgramOptions...)
	prog := tea.NewProgram(rootModel, programOpts...)

	logger.Info("dashboard starting", zap.String("source", cfg.Source.Kind))
	group, groupCtx := errgroup.WithContext(runnerCtx)
	group.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		prog.Quit()
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("dashboard stopped")
	return nil
}

// OpenSource builds the inventory source selected by cfg. The returned func
// releases connections held by the source.
func OpenSource(cfg config.Source, logger *zap.Logger) (inventory.Source, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }
	switch cfg.Kind {
	case config.SourceHTTP:
		src, err := inventory.NewHTTPSource(inventory.HTTPOptions{
			BaseURL: cfg.Address,
			Session: cfg.Session,
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, noop, nil
	case config.SourceGRPC:
		src, err := inventory.NewGRPCSource(inventory.GRPCOptions{
			Address: cfg.Address,
			Session: cfg.Session,
			CAFile:  cfg.CAFile,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	case config.SourceFiles:
		return inventory.NewFileSource(inventory.FileOptions{
			Manifest:  cfg.Manifest,
			Roster:    cfg.Roster,
			HotfixDir: cfg.HotfixDir,
			Logger:    logger,
		}), noop, nil
	case config.SourceSQLite:
		src, err := inventory.OpenDB(cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}
