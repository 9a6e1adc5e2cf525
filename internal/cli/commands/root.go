package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/compose"
	"github.com/seshat-cli/seshat/internal/cli/deploy"
	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/secrets"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/internal/cli/tools"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

// appContext carries the process-level collaborators every command needs.
// Tests swap in fakes; Execute wires the real ones.
type appContext struct {
	deploymentFile string
	env            string

	logger *slog.Logger
	runner runner.Runner
	client *http.Client
	getenv func(string) string
	prompt secrets.Prompt
}

func NewRootCmd(version string) *cobra.Command {
	app := &appContext{
		logger: shared.NewLogger(),
		runner: runner.Exec{},
		client: http.DefaultClient,
		getenv: os.Getenv,
		prompt: promptAccessToken,
	}
	cmd := &cobra.Command{
		Use:   "seshat",
		Short: "Deployment and environment tasks for the data platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&app.deploymentFile, "deployment-file", "deployment.yml", "path to deployment descriptor")
	cmd.PersistentFlags().StringVar(&app.env, "env", "dev", "target environment, selects conf/<env>/.env")

	cmd.AddCommand(newSparkCmd(app))
	cmd.AddCommand(newDockerCmd(app))
	cmd.AddCommand(newBwsCmd(app))
	cmd.AddCommand(newAwsCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return mapExitCode(err)
	}
	return shared.ExitOK
}

func mapExitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	return shared.ExitFailure
}

func (app *appContext) loadConfig() (*deployment.Config, error) {
	cfg, err := deployment.Load(app.deploymentFile)
	if err != nil {
		return nil, newExitCodeError(shared.ExitConfigError, err)
	}
	return cfg, nil
}

// resolveSecrets loads the bws secret map for the current invocation. Every
// failure path degrades to an empty map; commands decide downstream whether
// missing credentials are fatal.
func (app *appContext) resolveSecrets(ctx context.Context, cfg *deployment.Config, skip bool) map[string]string {
	if skip || !cfg.LoadSecrets() {
		return map[string]string{}
	}
	token := secrets.EnsureToken(app.getenv, cfg, app.prompt, app.logger)
	if token == "" {
		return map[string]string{}
	}
	if !tools.EnsureInstalled("bws", func() error { return tools.InstallBWS(app.client) }, app.logger) {
		return map[string]string{}
	}
	return secrets.List(ctx, app.runner, token, app.logger)
}

// requireAWS installs the AWS CLI on demand; unlike bws it is mandatory for
// every flow that calls it.
func (app *appContext) requireAWS(ctx context.Context) error {
	installed := tools.EnsureInstalled("aws", func() error {
		return tools.InstallAWS(ctx, app.client, app.runner)
	}, app.logger)
	if !installed {
		return newExitCodeError(shared.ExitFailure, errors.New("aws CLI is not available"))
	}
	return nil
}

func (app *appContext) newCompose(profiles []string) *compose.Compose {
	return &compose.Compose{
		File:     compose.DefaultComposeFile,
		EnvFile:  deployment.EnvFile(app.env),
		Env:      app.env,
		Profiles: profiles,
		Runner:   app.runner,
		Logger:   app.logger,
	}
}

func mapDeployError(err error) error {
	if errors.Is(err, deploy.ErrPathMissing) {
		return newExitCodeError(shared.ExitPathMissing, err)
	}
	return newExitCodeError(shared.ExitDeployError, err)
}

type exitCodeError struct {
	code int
	err  error
}

func newExitCodeError(code int, err error) *exitCodeError {
	return &exitCodeError{code: code, err: err}
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}
