package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seshat-cli/seshat/internal/cli/cloud"
	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/secrets"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/internal/cli/tools"
)

type checkResult struct {
	name   string
	ok     bool
	detail string
}

func newCheckCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the local environment",
	}
	cmd.AddCommand(newCheckEnvironmentCmd(app))
	cmd.AddCommand(newCheckSecurityCmd(app))
	return cmd
}

func newCheckEnvironmentCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "environment",
		Short: "Check required tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := environmentChecks(cmd.Context(), app)
			return reportChecks(cmd, results)
		},
	}
	return cmd
}

func environmentChecks(ctx context.Context, app *appContext) []checkResult {
	results := []checkResult{localBinCheck()}

	for _, tool := range []string{"docker", "aws", "bws"} {
		path := tools.Find(tool)
		results = append(results, checkResult{
			name:   tool + " installed",
			ok:     path != "",
			detail: path,
		})
	}

	daemon := checkResult{name: "docker daemon reachable"}
	res, err := app.runner.Run(ctx, runner.Spec{Program: "docker", Args: []string{"info"}})
	if err == nil && res.ExitCode == 0 {
		daemon.ok = true
	} else if res != nil {
		daemon.detail = fmt.Sprintf("exit code %d", res.ExitCode)
	} else {
		daemon.detail = err.Error()
	}
	return append(results, daemon)
}

func localBinCheck() checkResult {
	dir := shared.LocalBinDir()
	info, err := os.Stat(dir)
	ok := err == nil && info.IsDir()
	detail := dir
	if ok && !strings.Contains(os.Getenv("PATH"), dir) {
		detail = dir + ", not on PATH"
	}
	return checkResult{name: "~/.local/bin present", ok: ok, detail: detail}
}

func newCheckSecurityCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Check secrets and registry access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			var results []checkResult

			bwsPath := tools.Find("bws")
			results = append(results, checkResult{name: "bws installed", ok: bwsPath != "", detail: bwsPath})

			token := secrets.Token(app.getenv, cfg)
			results = append(results, checkResult{name: "bws access token present", ok: token != ""})

			secretValues := map[string]string{}
			if token != "" {
				secretValues = secrets.List(ctx, app.runner, token, app.logger)
			}
			results = append(results, checkResult{
				name:   "secrets listable",
				ok:     len(secretValues) > 0,
				detail: fmt.Sprintf("%d secrets", len(secretValues)),
			})

			creds := cloud.Credentials(secretValues)
			creds.Region = cfg.AWSRegion
			results = append(results, checkResult{name: "aws credentials resolvable", ok: creds.Complete()})

			login := checkResult{name: "registry login"}
			if cfg.AWSAccountID == "" {
				login.detail = "no aws_account_id configured"
			} else if ok, err := cloud.RegistryLogin(ctx, app.runner, cfg, secretValues, app.logger); err != nil {
				login.detail = err.Error()
			} else {
				login.ok = ok
			}
			results = append(results, login)

			return reportChecks(cmd, results)
		},
	}
	return cmd
}

func reportChecks(cmd *cobra.Command, results []checkResult) error {
	failed := 0
	for _, result := range results {
		status := "ok"
		if !result.ok {
			status = "missing"
			failed++
		}
		if result.detail != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s (%s)\n", result.name, status, result.detail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", result.name, status)
		}
	}
	if failed > 0 {
		return newExitCodeError(shared.ExitFailure, fmt.Errorf("%d of %d checks failed", failed, len(results)))
	}
	return nil
}
