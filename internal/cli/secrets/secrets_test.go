package secrets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func getenvFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestTokenEnvWinsOverConfig(t *testing.T) {
	cfg := &deployment.Config{BWSAccessToken: "from-config"}
	got := Token(getenvFrom(map[string]string{TokenEnvVar: "from-env"}), cfg)
	if got != "from-env" {
		t.Fatalf("env token should win, got %q", got)
	}
}

func TestTokenFallsBackToConfig(t *testing.T) {
	cfg := &deployment.Config{BWSAccessToken: "from-config"}
	if got := Token(getenvFrom(nil), cfg); got != "from-config" {
		t.Fatalf("expected config token, got %q", got)
	}
}

func TestEnsureTokenPromptsWhenAbsent(t *testing.T) {
	cfg := &deployment.Config{}
	got := EnsureToken(getenvFrom(nil), cfg, func() (string, error) {
		return "  typed  ", nil
	}, discard())
	if got != "typed" {
		t.Fatalf("expected trimmed prompt value, got %q", got)
	}
}

func TestEnsureTokenSkippedPromptYieldsAbsent(t *testing.T) {
	cfg := &deployment.Config{}
	if got := EnsureToken(getenvFrom(nil), cfg, func() (string, error) {
		return "", nil
	}, discard()); got != "" {
		t.Fatalf("empty prompt should yield absent token, got %q", got)
	}
	if got := EnsureToken(getenvFrom(nil), cfg, func() (string, error) {
		return "", errors.New("interrupted")
	}, discard()); got != "" {
		t.Fatalf("interrupted prompt should yield absent token, got %q", got)
	}
}

func TestListParsesRecords(t *testing.T) {
	var gotSpec runner.Spec
	run := runner.Func(func(_ context.Context, spec runner.Spec) (*runner.Result, error) {
		gotSpec = spec
		return &runner.Result{Stdout: `[
			{"key": "AWS_ACCESS_KEY_ID", "value": "AKIA"},
			{"key": "empty", "value": ""},
			{"key": "DB_PASSWORD", "value": "hunter2"}
		]`}, nil
	})

	out := List(context.Background(), run, "tok", discard())
	if gotSpec.Program != "bws" {
		t.Fatalf("unexpected program: %s", gotSpec.Program)
	}
	if len(gotSpec.Args) != 4 || gotSpec.Args[3] != "tok" {
		t.Fatalf("unexpected args: %v", gotSpec.Args)
	}
	if len(out) != 2 || out["DB_PASSWORD"] != "hunter2" {
		t.Fatalf("unexpected secret map: %v", out)
	}
}

func TestListFailSoft(t *testing.T) {
	run := runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		return &runner.Result{ExitCode: 1}, errors.New("bws exploded")
	})
	if out := List(context.Background(), run, "tok", discard()); len(out) != 0 {
		t.Fatalf("invocation failure should yield empty map, got %v", out)
	}

	run = runner.Func(func(context.Context, runner.Spec) (*runner.Result, error) {
		return &runner.Result{Stdout: "not json"}, nil
	})
	if out := List(context.Background(), run, "tok", discard()); len(out) != 0 {
		t.Fatalf("parse failure should yield empty map, got %v", out)
	}
}
