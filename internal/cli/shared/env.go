package shared

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalBinDir is the user-local install target for bootstrapped tools.
func LocalBinDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/bin"
	}
	return filepath.Join(home, ".local", "bin")
}

// BuildEnv returns a subprocess environment based on the current one, with
// the user-local bin directory prepended to PATH once and extra variables
// appended last so they win over inherited values.
func BuildEnv(extra map[string]string) []string {
	env := os.Environ()

	localBin := LocalBinDir()
	for i, entry := range env {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name != "PATH" {
			continue
		}
		if !containsPathEntry(value, localBin) {
			env[i] = "PATH=" + localBin + string(os.PathListSeparator) + value
		}
		break
	}

	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

func containsPathEntry(pathValue, dir string) bool {
	for _, entry := range strings.Split(pathValue, string(os.PathListSeparator)) {
		if entry == dir {
			return true
		}
	}
	return false
}
