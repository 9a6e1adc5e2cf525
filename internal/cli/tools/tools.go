// Package tools discovers and installs the external CLIs the toolkit wraps
// (bws, aws). Installs are user-local, never needing root.
package tools

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/seshat-cli/seshat/internal/cli/shared"
)

// Find locates a tool binary: PATH first, then the user-local bin directory.
// Returns "" when not found.
func Find(name string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	fallback := filepath.Join(shared.LocalBinDir(), name)
	info, err := os.Stat(fallback)
	if err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0 {
		return fallback
	}
	return ""
}

// Installer installs one tool; implementations live in this package.
type Installer func() error

// EnsureInstalled checks for the tool and installs it on demand. Install
// failure is recoverable: it is reported as false, never an error, and the
// caller decides whether to continue degraded.
func EnsureInstalled(name string, install Installer, logger *slog.Logger) bool {
	if Find(name) != "" {
		return true
	}
	logger.Warn("tool not found, attempting to install", "tool", name)
	if err := install(); err != nil {
		logger.Warn("failed to install tool", "tool", name, "error", err)
		return false
	}
	return true
}

// PrependLocalBin makes freshly installed tools resolvable by the current
// process without a shell restart.
func PrependLocalBin() {
	localBin := shared.LocalBinDir()
	current := os.Getenv("PATH")
	for _, entry := range strings.Split(current, string(os.PathListSeparator)) {
		if entry == localBin {
			return
		}
	}
	os.Setenv("PATH", localBin+string(os.PathListSeparator)+current)
}
