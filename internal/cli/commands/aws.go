package commands

import (
	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/tools"
)

func newAwsCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Manage the AWS CLI",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "install-cli",
		Short: "Install the AWS CLI into ~/.local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tools.InstallAWS(cmd.Context(), app.client, app.runner); err != nil {
				return err
			}
			app.logger.Info("installed aws", "path", tools.Find("aws"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-cli",
		Short: "Remove the user-local AWS CLI install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tools.RemoveAWS()
		},
	})
	return cmd
}
