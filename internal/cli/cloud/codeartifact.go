package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

const repositoryEndpointTemplate = "https://%s-%s.d.codeartifact.%s.amazonaws.com/pypi/%s"

// ErrMissingCredentials marks a token request skipped for lack of an access
// key pair.
var ErrMissingCredentials = errors.New("missing AWS credentials")

// AuthorizationToken mints a short-lived CodeArtifact token. Unlike the
// registry login there is no soft-fail path: the token is mandatory for the
// deployment pipeline, so every failure here is terminal for the run.
func AuthorizationToken(ctx context.Context, run runner.Runner, cfg *deployment.Config, secrets map[string]string) (string, error) {
	accountID, err := cfg.RequireAccountID()
	if err != nil {
		return "", err
	}
	region, err := cfg.RequireRegion()
	if err != nil {
		return "", err
	}
	domain, err := cfg.RequireDomain()
	if err != nil {
		return "", err
	}

	creds := Credentials(secrets)
	creds.Region = region
	if !creds.Complete() {
		return "", ErrMissingCredentials
	}

	res, err := run.Run(ctx, runner.Spec{
		Program: "aws",
		Args: []string{
			"codeartifact", "get-authorization-token",
			"--domain", domain,
			"--domain-owner", accountID,
			"--region", region,
			"--output", "json",
		},
		Env: shared.BuildEnv(creds.EnvVars()),
	})
	if err != nil {
		return "", fmt.Errorf("get CodeArtifact authorization token: %w", err)
	}

	var payload struct {
		AuthorizationToken string `json:"authorizationToken"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &payload); err != nil {
		return "", fmt.Errorf("parse CodeArtifact token response: %w", err)
	}
	if payload.AuthorizationToken == "" {
		return "", errors.New("no authorization token in AWS response")
	}
	return payload.AuthorizationToken, nil
}

// RepositoryURL returns the artifact repository endpoint for the configured
// domain, account and region.
func RepositoryURL(cfg *deployment.Config) (string, error) {
	accountID, err := cfg.RequireAccountID()
	if err != nil {
		return "", err
	}
	region, err := cfg.RequireRegion()
	if err != nil {
		return "", err
	}
	domain, err := cfg.RequireDomain()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(repositoryEndpointTemplate, domain, accountID, region, cfg.CodeArtifactRepository), nil
}
