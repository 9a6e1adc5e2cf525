package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/zip"

	"github.com/seshat-cli/seshat/internal/cli/runner"
	"github.com/seshat-cli/seshat/internal/cli/shared"
)

// Pinned tool releases. Bump deliberately.
const (
	bwsVersion     = "1.0.0"
	bwsReleaseBase = "https://github.com/bitwarden/sdk-sm/releases/download"
	awsBundleURL   = "https://awscli.amazonaws.com/awscli-exe-linux-x86_64.zip"
)

func bwsDownloadURL() string {
	arch := "x86_64"
	if runtime.GOARCH == "arm64" {
		arch = "aarch64"
	}
	platform := "unknown-linux-gnu"
	if runtime.GOOS == "darwin" {
		platform = "apple-darwin"
	}
	return fmt.Sprintf("%s/bws-v%s/bws-%s-%s-%s.zip",
		bwsReleaseBase, bwsVersion, arch, platform, bwsVersion)
}

func download(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return content, nil
}

// InstallBWS downloads the pinned bws release archive and places the binary
// in the user-local bin directory.
func InstallBWS(client *http.Client) error {
	content, err := download(client, bwsDownloadURL())
	if err != nil {
		return err
	}
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("failed to open bws archive: %w", err)
	}
	for _, file := range reader.File {
		if filepath.Base(file.Name) != "bws" || file.FileInfo().IsDir() {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to read bws archive entry: %w", err)
		}
		binary, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to read bws archive entry: %w", err)
		}
		binDir := shared.LocalBinDir()
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", binDir, err)
		}
		dest := filepath.Join(binDir, "bws")
		if err := os.WriteFile(dest, binary, 0o755); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		// The current process must be able to resolve the fresh install;
		// on-demand installs are followed immediately by an invocation.
		PrependLocalBin()
		return nil
	}
	return fmt.Errorf("bws binary not found in release archive")
}

// RemoveBWS deletes the user-local bws binary. Missing is not an error.
func RemoveBWS() error {
	path := filepath.Join(shared.LocalBinDir(), "bws")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// InstallAWS downloads the AWS CLI v2 bundle and runs its bundled installer
// targeting the user-local prefix. The bundle's install program handles the
// symlink layout itself.
func InstallAWS(ctx context.Context, client *http.Client, run runner.Runner) error {
	content, err := download(client, awsBundleURL)
	if err != nil {
		return err
	}
	staging, err := os.MkdirTemp("", "seshat-awscli-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extractZip(content, staging); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	result, err := run.Run(ctx, runner.Spec{
		Program: filepath.Join(staging, "aws", "install"),
		Args: []string{
			"--install-dir", filepath.Join(home, ".local", "aws-cli"),
			"--bin-dir", shared.LocalBinDir(),
			"--update",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to run aws installer: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("aws installer exited with code %d: %s", result.ExitCode, result.Stderr)
	}
	PrependLocalBin()
	return nil
}

// RemoveAWS deletes the user-local AWS CLI install and its bin links.
func RemoveAWS() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(home, ".local", "aws-cli")); err != nil {
		return fmt.Errorf("failed to remove aws-cli directory: %w", err)
	}
	for _, name := range []string{"aws", "aws_completer"} {
		link := filepath.Join(shared.LocalBinDir(), name)
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", link, err)
		}
	}
	return nil
}

func extractZip(content []byte, dest string) error {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	for _, file := range reader.File {
		target, err := resolveZipPath(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
		}
		mode := file.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, data, mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	return nil
}

func resolveZipPath(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." ||
		len(cleaned) >= 3 && cleaned[:3] == ".."+string(os.PathSeparator) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(dest, cleaned), nil
}
