// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCacheCommand creates the `importctl cache` command tree.
func newCacheCommand(app *App) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and invalidate cached command output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "bust <path>...",
		Short: "Mark cache entries stale so the next run respawns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, err := app.engine(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range args {
				dir, err := e.Bust(path)
				if err != nil {
					return app.fail(fmt.Errorf("bust %s: %w", path, err), glamourStyle(cfg))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Busted %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(dir))
			}
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "path [path]",
		Short: "Print the cache root, or the entry directory for a cache path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.engine(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), e.CacheRoot())
				return nil
			}
			dir, err := e.CacheEntryDir(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})

	return cacheCmd
}
