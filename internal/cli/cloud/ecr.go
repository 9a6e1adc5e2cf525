package cloud

import (
	"context"
	"log/slog"
	"strings"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

// RegistryLogin authenticates the local docker client against the account's
// ECR registry. Missing account id or region in the config is a hard error;
// missing credentials are recoverable (warn + false) and the caller proceeds
// without registry access.
func RegistryLogin(ctx context.Context, run runner.Runner, cfg *deployment.Config, secrets map[string]string, logger *slog.Logger) (bool, error) {
	if _, err := cfg.RequireAccountID(); err != nil {
		return false, err
	}
	region, err := cfg.RequireRegion()
	if err != nil {
		return false, err
	}

	creds := Credentials(secrets)
	creds.Region = region
	if !creds.Complete() {
		logger.Warn("missing AWS credentials, skipping ECR login")
		return false, nil
	}

	env := shared.BuildEnv(creds.EnvVars())
	password, err := run.Run(ctx, runner.Spec{
		Program: "aws",
		Args:    []string{"ecr", "get-login-password", "--region", region},
		Env:     env,
	})
	if err != nil {
		logger.Warn("failed to obtain ECR login password", "error", err)
		return false, nil
	}

	registry := cfg.RegistryHost()
	_, err = run.Run(ctx, runner.Spec{
		Program: "docker",
		Args:    []string{"login", "--username", "AWS", "--password-stdin", registry},
		Env:     env,
		Stdin:   strings.TrimSpace(password.Stdout),
	})
	if err != nil {
		logger.Warn("docker was not authenticated with AWS ECR", "registry", registry, "error", err)
		return false, nil
	}
	return true, nil
}
