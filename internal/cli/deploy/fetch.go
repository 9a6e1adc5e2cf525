package deploy

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/seshat-cli/seshat/internal/cli/shared"
	"github.com/seshat-cli/seshat/pkg/deployment"
)

// Job parameter keys with pipeline meaning; everything else is template data.
const (
	paramAsset  = "asset"
	paramDigest = "digest"
)

// assetName returns the archive file name for a job, defaulting to
// <name>-<version>.zip.
func assetName(job deployment.Job) string {
	if asset := job.Params[paramAsset]; asset != "" {
		return asset
	}
	return fmt.Sprintf("%s-%s.zip", job.Name, job.Version)
}

// fetch downloads the job's archive into dir and returns its path. The
// repository authenticates HTTP requests with basic auth aws:<token>.
func fetch(client *http.Client, repoURL, repoToken string, job deployment.Job, dir string) (string, error) {
	asset := assetName(job)
	url := strings.TrimRight(repoURL, "/") + "/" + job.Name + "/" + job.Version + "/" + asset

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth("aws", repoToken)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s@%s: %w", job.Name, job.Version, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s@%s: status=%d", job.Name, job.Version, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download %s@%s: %w", job.Name, job.Version, err)
	}
	if err := shared.VerifyDigest(content, job.Params[paramDigest]); err != nil {
		return "", fmt.Errorf("verify %s@%s: %w", job.Name, job.Version, err)
	}

	archivePath := filepath.Join(dir, asset)
	if err := os.WriteFile(archivePath, content, 0o644); err != nil {
		return "", err
	}
	return archivePath, nil
}
