// Package deploy implements the per-job artifact pipeline: fetch a versioned
// archive from the artifact repository, extract it, render templated
// descriptors, and place the results into the platform directories.
package deploy

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the transient on-disk directory holding per-job artifacts for
// one run. Callers defer Close so removal happens on every exit path,
// including mid-loop failures.
type Workspace struct {
	Root string
}

func OpenWorkspace() (*Workspace, error) {
	root, err := os.MkdirTemp("", "seshat-jobs-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Root: root}, nil
}

// JobDir creates and returns the per-job subdirectory.
func (w *Workspace) JobDir(name string) (string, error) {
	dir := filepath.Join(w.Root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	return dir, nil
}

func (w *Workspace) Close() error {
	return os.RemoveAll(w.Root)
}
