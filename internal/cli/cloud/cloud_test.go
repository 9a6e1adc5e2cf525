package cloud

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clearAWSEnv keeps the ambient environment from leaking credentials into
// the three-tier lookup under test.
func clearAWSEnv(t *testing.T) {
	t.Helper()
	t.Setenv(AccessKeyVar, "")
	t.Setenv(SecretKeyVar, "")
	t.Setenv(SessionTokenVar, "")
}

func baseConfig() *deployment.Config {
	cfg := &deployment.Config{
		AWSAccountID:       "123456789012",
		AWSRegion:          "us-east-1",
		CodeArtifactDomain: "data-platform",
	}
	deployment.Normalize(cfg)
	return cfg
}

func TestResolveEnvAlwaysWins(t *testing.T) {
	t.Setenv("SESHAT_TEST_KEY", "from-env")
	got := Resolve("SESHAT_TEST_KEY",
		EnvProvider(),
		MapProvider(map[string]string{"SESHAT_TEST_KEY": "from-secrets"}),
		StaticProvider("default"),
	)
	require.Equal(t, "from-env", got)
}

func TestResolveFallbackOrder(t *testing.T) {
	providers := []Provider{
		EnvProvider(),
		MapProvider(map[string]string{"IN_SECRETS": "secret-value"}),
		StaticProvider("default"),
	}
	require.Equal(t, "secret-value", Resolve("IN_SECRETS", providers...))
	require.Equal(t, "default", Resolve("NOWHERE", providers...))
	require.Equal(t, "", Resolve("NOWHERE", EnvProvider(), MapProvider(nil)))
}

func TestRegistryLoginRequiresAccountAndRegion(t *testing.T) {
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		t.Fatal("no command should run before config validation")
		return nil, nil
	})

	cfg := baseConfig()
	cfg.AWSAccountID = ""
	_, err := RegistryLogin(context.Background(), run, cfg, nil, discard())
	require.Error(t, err)

	cfg = baseConfig()
	cfg.AWSRegion = ""
	_, err = RegistryLogin(context.Background(), run, cfg, nil, discard())
	require.Error(t, err)
}

func TestRegistryLoginMissingCredentialsIsSoft(t *testing.T) {
	clearAWSEnv(t)
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		t.Fatal("no command should run without credentials")
		return nil, nil
	})
	ok, err := RegistryLogin(context.Background(), run, baseConfig(), map[string]string{}, discard())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistryLoginPipesPasswordToDocker(t *testing.T) {
	clearAWSEnv(t)
	secrets := map[string]string{
		AccessKeyVar: "AKIA",
		SecretKeyVar: "shhh",
	}
	var specs []runner.Spec
	run := runner.Func(func(_ context.Context, spec runner.Spec) (*runner.Result, error) {
		specs = append(specs, spec)
		if spec.Program == "aws" {
			return &runner.Result{Stdout: "ecr-password\n"}, nil
		}
		return &runner.Result{}, nil
	})

	ok, err := RegistryLogin(context.Background(), run, baseConfig(), secrets, discard())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, specs, 2)

	require.Equal(t, "aws", specs[0].Program)
	require.Equal(t, []string{"ecr", "get-login-password", "--region", "us-east-1"}, specs[0].Args)

	require.Equal(t, "docker", specs[1].Program)
	require.Equal(t, []string{
		"login", "--username", "AWS", "--password-stdin",
		"123456789012.dkr.ecr.us-east-1.amazonaws.com",
	}, specs[1].Args)
	require.Equal(t, "ecr-password", specs[1].Stdin)
}

func TestRegistryLoginDockerFailureIsSoft(t *testing.T) {
	clearAWSEnv(t)
	secrets := map[string]string{AccessKeyVar: "AKIA", SecretKeyVar: "shhh"}
	run := runner.Func(func(_ context.Context, spec runner.Spec) (*runner.Result, error) {
		if spec.Program == "aws" {
			return &runner.Result{Stdout: "pw"}, nil
		}
		return &runner.Result{ExitCode: 1}, errors.New("login denied")
	})
	ok, err := RegistryLogin(context.Background(), run, baseConfig(), secrets, discard())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthorizationTokenFailsBeforeAnyCallWhenConfigIncomplete(t *testing.T) {
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		t.Fatal("no command should run before config validation")
		return nil, nil
	})
	for _, mutate := range []func(*deployment.Config){
		func(c *deployment.Config) { c.AWSAccountID = "" },
		func(c *deployment.Config) { c.AWSRegion = "" },
		func(c *deployment.Config) { c.CodeArtifactDomain = "" },
	} {
		cfg := baseConfig()
		mutate(cfg)
		_, err := AuthorizationToken(context.Background(), run, cfg, map[string]string{
			AccessKeyVar: "AKIA", SecretKeyVar: "shhh",
		})
		require.Error(t, err)
	}
}

func TestAuthorizationTokenMissingCredentialsIsTerminal(t *testing.T) {
	clearAWSEnv(t)
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		t.Fatal("no command should run without credentials")
		return nil, nil
	})
	_, err := AuthorizationToken(context.Background(), run, baseConfig(), nil)
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthorizationTokenParsesResponse(t *testing.T) {
	clearAWSEnv(t)
	var spec runner.Spec
	run := runner.Func(func(_ context.Context, s runner.Spec) (*runner.Result, error) {
		spec = s
		return &runner.Result{Stdout: `{"authorizationToken": "ca-token", "expiration": 1700000000}`}, nil
	})
	token, err := AuthorizationToken(context.Background(), run, baseConfig(), map[string]string{
		AccessKeyVar: "AKIA", SecretKeyVar: "shhh",
	})
	require.NoError(t, err)
	require.Equal(t, "ca-token", token)
	require.Equal(t, "aws", spec.Program)
	require.Equal(t, []string{
		"codeartifact", "get-authorization-token",
		"--domain", "data-platform",
		"--domain-owner", "123456789012",
		"--region", "us-east-1",
		"--output", "json",
	}, spec.Args)
}

func TestAuthorizationTokenCommandFailureIsTerminal(t *testing.T) {
	clearAWSEnv(t)
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		return &runner.Result{ExitCode: 255}, errors.New("auth failure")
	})
	_, err := AuthorizationToken(context.Background(), run, baseConfig(), map[string]string{
		AccessKeyVar: "AKIA", SecretKeyVar: "shhh",
	})
	require.Error(t, err)

	run = runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		return &runner.Result{Stdout: `{}`}, nil
	})
	_, err = AuthorizationToken(context.Background(), run, baseConfig(), map[string]string{
		AccessKeyVar: "AKIA", SecretKeyVar: "shhh",
	})
	require.Error(t, err)
}

func TestRepositoryURL(t *testing.T) {
	url, err := RepositoryURL(baseConfig())
	require.NoError(t, err)
	require.Equal(t,
		"https://data-platform-123456789012.d.codeartifact.us-east-1.amazonaws.com/pypi/python-artifacts",
		url)

	cfg := baseConfig()
	cfg.CodeArtifactDomain = ""
	_, err = RepositoryURL(cfg)
	require.Error(t, err)
}
