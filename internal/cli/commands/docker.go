package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/cloud"
	"github.com/seshat-cli/seshat/internal/cli/compose"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

func newDockerCmd(app *appContext) *cobra.Command {
	var profiles []string

	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Manage the local docker compose stack",
	}
	cmd.PersistentFlags().StringSliceVar(&profiles, "profiles", nil, "compose profiles, overrides the descriptor")

	cmd.AddCommand(newDockerUpCmd(app, &profiles, false))
	cmd.AddCommand(newDockerUpCmd(app, &profiles, true))
	cmd.AddCommand(newDockerDownCmd(app, &profiles))
	cmd.AddCommand(newDockerRestartCmd(app, &profiles))
	cmd.AddCommand(newDockerPSCmd(app, &profiles))
	cmd.AddCommand(newDockerLogsCmd(app, &profiles))
	cmd.AddCommand(newDockerBuildCmd(app, &profiles))
	cmd.AddCommand(newDockerNetworkCmds(app)...)
	cmd.AddCommand(newDockerCleanCmd(app, &profiles))

	return cmd
}

// stackProfiles applies the --profiles override on top of the descriptor.
func stackProfiles(cfg *deployment.Config, override []string) []string {
	if len(override) > 0 {
		return override
	}
	return cfg.Profiles
}

// startupPreamble resolves secrets, logs into the container registry when an
// account is configured, and makes sure the shared network exists. Returned
// secrets go into the compose subprocess environment.
func (app *appContext) startupPreamble(ctx context.Context, cfg *deployment.Config) (map[string]string, error) {
	secretValues := app.resolveSecrets(ctx, cfg, false)
	if !cfg.SkipECRLogin && cfg.AWSAccountID != "" {
		if _, err := cloud.RegistryLogin(ctx, app.runner, cfg, secretValues, app.logger); err != nil {
			return nil, newExitCodeError(shared.ExitConfigError, err)
		}
	}
	if err := compose.EnsureNetwork(ctx, app.runner, app.logger); err != nil {
		return nil, err
	}
	return secretValues, nil
}

func newDockerUpCmd(app *appContext, profiles *[]string, detach bool) *cobra.Command {
	use := "up"
	short := "Start the stack in the foreground"
	if detach {
		use = "up-daemon"
		short = "Start the stack detached"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			secretValues, err := app.startupPreamble(ctx, cfg)
			if err != nil {
				return err
			}
			return app.newCompose(stackProfiles(cfg, *profiles)).Up(ctx, detach, secretValues)
		},
	}
	return cmd
}

func newDockerDownCmd(app *appContext, profiles *[]string) *cobra.Command {
	var removeVolumes bool
	var removeOrphans bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if removeVolumes && !confirm(cmd, yes, "remove volumes for the %s stack?", app.env) {
				return nil
			}
			return app.newCompose(stackProfiles(cfg, *profiles)).Down(cmd.Context(), removeVolumes, removeOrphans)
		},
	}
	cmd.Flags().BoolVar(&removeVolumes, "volumes", false, "also remove named volumes")
	cmd.Flags().BoolVar(&removeOrphans, "remove-orphans", false, "remove containers not in the compose file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

func newDockerRestartCmd(app *appContext, profiles *[]string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop the stack and start it detached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if !confirm(cmd, yes, "restart the %s stack?", app.env) {
				return nil
			}
			stack := app.newCompose(stackProfiles(cfg, *profiles))
			if err := stack.Down(ctx, false, false); err != nil {
				return err
			}
			secretValues, err := app.startupPreamble(ctx, cfg)
			if err != nil {
				return err
			}
			return stack.Up(ctx, true, secretValues)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

func newDockerPSCmd(app *appContext, profiles *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List stack containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			return app.newCompose(stackProfiles(cfg, *profiles)).PS(cmd.Context())
		},
	}
	return cmd
}

func newDockerLogsCmd(app *appContext, profiles *[]string) *cobra.Command {
	var service string
	var follow bool
	var tail int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show container logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			return app.newCompose(stackProfiles(cfg, *profiles)).Logs(cmd.Context(), service, follow, tail)
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "limit output to one service")
	cmd.Flags().BoolVarP(&follow, "follow", "f", true, "follow log output")
	cmd.Flags().IntVar(&tail, "tail", 250, "number of trailing lines per container")
	return cmd
}

func newDockerBuildCmd(app *appContext, profiles *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build stack images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			return app.newCompose(stackProfiles(cfg, *profiles)).Build(cmd.Context())
		},
	}
	return cmd
}

func newDockerNetworkCmds(app *appContext) []*cobra.Command {
	create := &cobra.Command{
		Use:   "create-network",
		Short: "Create the shared " + compose.NetworkName + " network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compose.EnsureNetwork(cmd.Context(), app.runner, app.logger)
		},
	}
	remove := &cobra.Command{
		Use:   "remove-network",
		Short: "Remove the shared " + compose.NetworkName + " network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compose.RemoveNetwork(cmd.Context(), app.runner, app.logger)
		},
	}
	return []*cobra.Command{create, remove}
}

func newDockerCleanCmd(app *appContext, profiles *[]string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Tear down the stack, volumes, orphans and the shared network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if !confirm(cmd, yes, "remove all containers, volumes and the shared network for %s?", app.env) {
				return nil
			}
			if err := app.newCompose(stackProfiles(cfg, *profiles)).Down(ctx, true, true); err != nil {
				return err
			}
			return compose.RemoveNetwork(ctx, app.runner, app.logger)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

// confirm asks a yes/no question on the command's input stream. Anything
// other than y/yes declines.
func confirm(cmd *cobra.Command, yes bool, format string, args ...any) bool {
	if yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+" [y/N]: ", args...)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
