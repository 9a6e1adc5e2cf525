// Package secrets resolves the Bitwarden Secrets Manager access token and
// loads the key/value secret map through the bws CLI.
package secrets

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

const TokenEnvVar = "BWS_ACCESS_TOKEN"

// Prompt acquires a token interactively. Implementations live at the CLI
// boundary; the core never touches the terminal. Returning "" means the
// operator skipped.
type Prompt func() (string, error)

// Token resolves the access token from the environment first, then the
// deployment config. Empty means absent.
func Token(getenv func(string) string, cfg *deployment.Config) string {
	if token := getenv(TokenEnvVar); token != "" {
		return token
	}
	return cfg.BWSAccessToken
}

// EnsureToken resolves the token, falling back to the interactive prompt.
// A skipped or failed prompt yields "" without error; secrets loading is
// optional and the caller proceeds without it.
func EnsureToken(getenv func(string) string, cfg *deployment.Config, prompt Prompt, logger *slog.Logger) string {
	if token := Token(getenv, cfg); token != "" {
		return token
	}
	if prompt == nil {
		return ""
	}
	token, err := prompt()
	token = strings.TrimSpace(token)
	if err != nil || token == "" {
		logger.Warn("no token provided, skipping Bitwarden secrets loading")
		return ""
	}
	return token
}

type secretRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// List fetches all secrets via `bws list secrets`. Fail-soft: any invocation
// or parse failure logs a warning and returns an empty map. One attempt,
// never an error; callers treat an empty map as "proceed without secrets".
func List(ctx context.Context, run runner.Runner, token string, logger *slog.Logger) map[string]string {
	res, err := run.Run(ctx, runner.Spec{
		Program: "bws",
		Args:    []string{"list", "secrets", "--access-token", token},
		Env:     shared.BuildEnv(nil),
	})
	if err != nil {
		logger.Warn("failed to retrieve secrets from Bitwarden", "error", err)
		return map[string]string{}
	}

	var records []secretRecord
	if err := json.Unmarshal([]byte(res.Stdout), &records); err != nil {
		logger.Warn("failed to parse secrets JSON from Bitwarden output", "error", err)
		return map[string]string{}
	}

	out := map[string]string{}
	for _, record := range records {
		if record.Key != "" && record.Value != "" {
			out[record.Key] = record.Value
		}
	}
	return out
}
