package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

func newImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy a manifest, roster and hotfix files into the SQLite inventory",
		Example: `  hotfix-tui import --manifest manifest.json --roster roster.yaml \
    --hotfix-dir ./hotfix --database inventory.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := e.load()
			if err != nil {
				return err
			}
			src := cfg.Source
			if src.Database == "" {
				return errors.New("--database is required")
			}
			if src.Manifest == "" || src.Roster == "" {
				return errors.New("--manifest and --roster are required")
			}
			logger, err := e.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := inventory.OpenDB(src.Database, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					logger.Warn("close database", zap.Error(err))
				}
			}()

			files := inventory.NewFileSource(inventory.FileOptions{
				Manifest:  src.Manifest,
				Roster:    src.Roster,
				HotfixDir: src.HotfixDir,
				Logger:    logger,
			})
			sum, err := db.Import(cmd.Context(), files)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries, %d nodes, %d events into %s\n",
				sum.Entries, sum.Nodes, sum.Events, src.Database)
			return nil
		},
	}
}
