package commands

import (
	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/cloud"
	"github.com/seshat-cli/seshat/internal/cli/deploy"
	"github.com/seshat-cli/seshat/internal/cli/shared"
)

func newSparkCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spark",
		Short: "Deploy Spark jobs and Airflow DAGs",
	}
	cmd.AddCommand(newSparkDeployJobsCmd(app))
	cmd.AddCommand(newSparkRemoveJobsCmd(app))
	return cmd
}

func newSparkDeployJobsCmd(app *appContext) *cobra.Command {
	var skipSecrets bool
	var skipECRLogin bool

	cmd := &cobra.Command{
		Use:   "deploy-jobs",
		Short: "Fetch, render and deploy every configured job package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			secretValues := app.resolveSecrets(ctx, cfg, skipSecrets)

			if err := app.requireAWS(ctx); err != nil {
				return err
			}
			if !skipECRLogin && !cfg.SkipECRLogin {
				if _, err := cloud.RegistryLogin(ctx, app.runner, cfg, secretValues, app.logger); err != nil {
					return newExitCodeError(shared.ExitConfigError, err)
				}
			}

			token, err := cloud.AuthorizationToken(ctx, app.runner, cfg, secretValues)
			if err != nil {
				return newExitCodeError(shared.ExitAuthFailed, err)
			}
			repoURL, err := cloud.RepositoryURL(cfg)
			if err != nil {
				return newExitCodeError(shared.ExitConfigError, err)
			}

			pipeline := &deploy.Pipeline{
				Client:    app.client,
				RepoURL:   repoURL,
				RepoToken: token,
				DagsPath:  cfg.DagsPath,
				JobsPath:  cfg.JobsPath,
				Logger:    app.logger,
			}
			if err := pipeline.Run(cfg.Jobs()); err != nil {
				return mapDeployError(err)
			}

			app.newCompose(cfg.Profiles).RestartIfRunning(ctx, cfg.RestartServices)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipSecrets, "skip-secrets", false, "do not load secrets from bws")
	cmd.Flags().BoolVar(&skipECRLogin, "skip-ecr-login", false, "skip the container registry login")
	return cmd
}

func newSparkRemoveJobsCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-jobs",
		Short: "Remove all deployed job packages and DAG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if err := deploy.RemoveAll(cfg.DagsPath, cfg.JobsPath); err != nil {
				return mapDeployError(err)
			}
			app.newCompose(cfg.Profiles).RestartIfRunning(cmd.Context(), cfg.RestartServices)
			return nil
		},
	}
	return cmd
}
