// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoginCommand creates the `importctl login` command.
func newLoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Re-authenticate the cloud CLI",
		Long: `Run the cloud CLI's interactive login under the same lock automatic
re-authentication uses, so it never races a retrying command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, err := app.engine(cmd.Context())
			if err != nil {
				return err
			}
			if err := e.Login(cmd.Context()); err != nil {
				return app.fail(err, glamourStyle(cfg))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in\n", SuccessStyle.Render("✓"))
			return nil
		},
	}
}
