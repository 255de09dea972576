package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/app"
	"github.com/adamkadaban/hotfix-tui/internal/config"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

func newServeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured inventory source over gRPC",
		Long: `serve exposes the configured source (files, sqlite or an upstream backend)
as the hotfix.v1.Inventory gRPC service so dashboards can use --source grpc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := e.load()
			if err != nil {
				return err
			}
			if cfg.Source.Kind == config.SourceGRPC {
				return errors.New("serve cannot proxy a grpc source")
			}
			logger, err := e.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			src, closeSrc, err := app.OpenSource(cfg.Source, logger)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer func() {
				if err := closeSrc(); err != nil {
					logger.Warn("close source", zap.Error(err))
				}
			}()

			srv := inventory.NewServer(src, inventory.ServerOptions{
				ListenAddr: cfg.Server.Listen,
				Session:    cfg.Server.Session,
				TLS: inventory.TLSOptions{
					CertFile: cfg.Server.CertPath,
					KeyFile:  cfg.Server.KeyPath,
				},
				Logger: logger,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s source on %s\n", cfg.Source.Kind, cfg.Server.Listen)
			return srv.Start(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "listen address, host:port or unix:///path")
	flags.String("server-session", "", "session token clients must present")
	flags.String("cert", "", "TLS certificate file")
	flags.String("key", "", "TLS key file")
	e.bind(flags, map[string]string{
		"listen":         config.KeyServerListen,
		"server-session": config.KeyServerSession,
		"cert":           config.KeyServerCert,
		"key":            config.KeyServerKey,
	})
	return cmd
}
