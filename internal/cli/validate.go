package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a hotfix manifest against the publishing rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := catalog.Validate(manifest); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries (version %g, generated %s)\n",
				len(manifest.Data), manifest.Metadata.Version, manifest.Metadata.Generated)
			return nil
		},
	}
}
