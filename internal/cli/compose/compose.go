// Package compose wraps docker compose invocations: profile selection,
// per-environment env files, and the conditional service restart that
// follows job deployments.
package compose

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/shared"
)

const (
	DefaultComposeFile = "docker-compose.yml"
	NetworkName        = "microservices"
)

// Compose builds docker compose argument lists for one environment. Commands
// are always argument slices, never shell strings, so profile names and
// paths with special characters pass through intact.
type Compose struct {
	File     string
	EnvFile  string
	Env      string
	Profiles []string
	Runner   runner.Runner
	Logger   *slog.Logger
}

// args prepends the compose file, env file and profile flags to a
// subcommand's arguments.
func (c *Compose) args(withProfiles bool, sub ...string) []string {
	file := c.File
	if file == "" {
		file = DefaultComposeFile
	}
	out := []string{"compose", "-f", file, "--env-file", c.EnvFile}
	if withProfiles {
		for _, profile := range c.Profiles {
			out = append(out, "--profile", profile)
		}
	}
	return append(out, sub...)
}

func (c *Compose) env(extra map[string]string) []string {
	merged := map[string]string{"ENV": c.Env}
	for k, v := range extra {
		merged[k] = v
	}
	return shared.BuildEnv(merged)
}

// Up starts the selected profiles. Secrets are merged into the subprocess
// environment only; they never leak into the parent process.
func (c *Compose) Up(ctx context.Context, detach bool, secrets map[string]string) error {
	sub := []string{"up"}
	if detach {
		sub = append(sub, "-d")
	}
	_, err := c.Runner.Run(ctx, runner.Spec{
		Program:     "docker",
		Args:        c.args(true, sub...),
		Env:         c.env(secrets),
		Interactive: !detach,
	})
	return err
}

// Down stops and removes the selected services.
func (c *Compose) Down(ctx context.Context, removeVolumes, removeOrphans bool) error {
	sub := []string{"down"}
	if removeVolumes {
		sub = append(sub, "--volumes")
	}
	if removeOrphans {
		sub = append(sub, "--remove-orphans")
	}
	_, err := c.Runner.Run(ctx, runner.Spec{
		Program:     "docker",
		Args:        c.args(true, sub...),
		Env:         c.env(nil),
		Interactive: true,
	})
	return err
}

func (c *Compose) PS(ctx context.Context) error {
	_, err := c.Runner.Run(ctx, runner.Spec{
		Program:     "docker",
		Args:        c.args(true, "ps"),
		Env:         c.env(nil),
		Interactive: true,
	})
	return err
}

func (c *Compose) Build(ctx context.Context) error {
	_, err := c.Runner.Run(ctx, runner.Spec{
		Program:     "docker",
		Args:        c.args(true, "build"),
		Env:         c.env(nil),
		Interactive: true,
	})
	return err
}

// Logs tails service logs. Variables from the env file are injected into the
// subprocess environment so compose interpolation matches a running stack.
func (c *Compose) Logs(ctx context.Context, service string, follow bool, tail int) error {
	sub := []string{"logs"}
	if tail > 0 {
		sub = append(sub, "--tail="+strconv.Itoa(tail))
	}
	if follow {
		sub = append(sub, "-f")
	}
	if service != "" {
		sub = append(sub, service)
	}

	extra := map[string]string{}
	if _, err := os.Stat(c.EnvFile); err == nil {
		vars, err := godotenv.Read(c.EnvFile)
		if err != nil {
			c.Logger.Warn("failed to parse env file", "path", c.EnvFile, "error", err)
		} else {
			extra = vars
		}
	}

	_, err := c.Runner.Run(ctx, runner.Spec{
		Program:     "docker",
		Args:        c.args(false, sub...),
		Env:         c.env(extra),
		Interactive: true,
	})
	return err
}

// RestartIfRunning restarts the named services only when the compose project
// has running containers. Detection failure counts as "not running". Each
// restart is a distinct down then up -d pair, not a single restart call.
func (c *Compose) RestartIfRunning(ctx context.Context, services []string) {
	res, err := c.Runner.Run(ctx, runner.Spec{
		Program: "docker",
		Args:    c.args(false, "ps", "--status", "running", "--quiet"),
		Env:     c.env(nil),
	})
	if err != nil || !hasOutput(res.Stdout) {
		return
	}

	for _, service := range services {
		c.Logger.Info("restarting service", "service", service)
		if _, err := c.Runner.Run(ctx, runner.Spec{
			Program: "docker",
			Args:    c.args(false, "down", service),
			Env:     c.env(nil),
		}); err != nil {
			c.Logger.Warn("failed to stop service", "service", service, "error", err)
		}
		if _, err := c.Runner.Run(ctx, runner.Spec{
			Program: "docker",
			Args:    c.args(false, "up", service, "-d"),
			Env:     c.env(nil),
		}); err != nil {
			c.Logger.Warn("failed to start service", "service", service, "error", err)
		}
	}
}

func hasOutput(stdout string) bool {
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// EnsureNetwork creates the shared docker network when it does not exist.
func EnsureNetwork(ctx context.Context, run runner.Runner, logger *slog.Logger) error {
	res, err := run.Run(ctx, runner.Spec{
		Program: "docker",
		Args:    []string{"network", "ls", "--format", "{{.Name}}"},
		Env:     shared.BuildEnv(nil),
	})
	if err != nil {
		return err
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == NetworkName {
			return nil
		}
	}
	logger.Info("creating docker network", "network", NetworkName)
	_, err = run.Run(ctx, runner.Spec{
		Program: "docker",
		Args:    []string{"network", "create", NetworkName},
		Env:     shared.BuildEnv(nil),
	})
	return err
}

// RemoveNetwork deletes the shared docker network if present.
func RemoveNetwork(ctx context.Context, run runner.Runner, logger *slog.Logger) error {
	res, err := run.Run(ctx, runner.Spec{
		Program: "docker",
		Args:    []string{"network", "ls", "--format", "{{.Name}}"},
		Env:     shared.BuildEnv(nil),
	})
	if err != nil {
		return err
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == NetworkName {
			logger.Info("removing docker network", "network", NetworkName)
			_, err = run.Run(ctx, runner.Spec{
				Program: "docker",
				Args:    []string{"network", "rm", NetworkName},
				Env:     shared.BuildEnv(nil),
			})
			return err
		}
	}
	logger.Info("docker network does not exist", "network", NetworkName)
	return nil
}
