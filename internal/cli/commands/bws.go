package commands

import (
	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/tools"
)

func newBwsCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bws",
		Short: "Manage the Bitwarden Secrets CLI",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "install-cli",
		Short: "Install bws into ~/.local/bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tools.InstallBWS(app.client); err != nil {
				return err
			}
			app.logger.Info("installed bws", "path", tools.Find("bws"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-cli",
		Short: "Remove the user-local bws install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tools.RemoveBWS()
		},
	})
	return cmd
}
