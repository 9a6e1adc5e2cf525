package runner

import (
	"context"
	"strings"
	"testing"
)

func TestExecCapturesStdout(t *testing.T) {
	res, err := Exec{}.Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected stderr: %q", res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %d", res.ExitCode)
	}
}

func TestExecReportsExitCode(t *testing.T) {
	res, err := Exec{}.Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", "exit 7"},
	})
	if err == nil {
		t.Fatalf("expected error for non-zero exit")
	}
	if res.ExitCode != 7 {
		t.Fatalf("unexpected exit code: %d", res.ExitCode)
	}
}

func TestExecFeedsStdin(t *testing.T) {
	res, err := Exec{}.Run(context.Background(), Spec{
		Program: "cat",
		Stdin:   "piped",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Stdout != "piped" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestExecWorkingDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	res, err := Exec{}.Run(context.Background(), Spec{
		Program: "sh",
		Args:    []string{"-c", "pwd; printf %s \"$MARKER\""},
		Dir:     dir,
		Env:     []string{"PATH=/usr/bin:/bin", "MARKER=set"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Fatalf("working dir not honored: %q", res.Stdout)
	}
	if !strings.HasSuffix(res.Stdout, "set") {
		t.Fatalf("env not honored: %q", res.Stdout)
	}
}
