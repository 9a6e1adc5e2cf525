// Package runner invokes external tools as structured argument lists. Every
// shell-out in the CLI goes through the Runner interface so commands can be
// exercised in tests without real subprocesses.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Spec describes one subprocess invocation.
type Spec struct {
	Program string
	Args    []string

	// Dir sets the working directory; empty keeps the caller's.
	Dir string

	// Env is the full subprocess environment; nil inherits the caller's.
	Env []string

	// Stdin is fed to the subprocess when non-empty.
	Stdin string

	// Interactive wires the subprocess to the caller's stdio instead of
	// capturing output. Used for foreground compose sessions.
	Interactive bool
}

// Result holds captured output from a completed invocation. It is populated
// even when the command exits non-zero.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a Spec, blocking until the subprocess exits. No timeout is
// imposed; cancellation only happens through ctx.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// Func adapts a function to the Runner interface; handy for test fakes.
type Func func(ctx context.Context, spec Spec) (*Result, error)

func (f Func) Run(ctx context.Context, spec Spec) (*Result, error) {
	return f(ctx, spec)
}

// Exec is the real Runner backed by os/exec.
type Exec struct{}

func (Exec) Run(ctx context.Context, spec Spec) (*Result, error) {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env

	var stdout, stderr bytes.Buffer
	if spec.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		if spec.Stdin != "" {
			cmd.Stdin = strings.NewReader(spec.Stdin)
		}
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%s exited with status %d: %w", spec.Program, result.ExitCode, err)
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("run %s: %w", spec.Program, err)
	}
}
