package deploy

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/seshat-cli/seshat/pkg/deployment"
)

// Pipeline runs the fetch → extract → render → place sequence for each job,
// strictly sequentially. Any step failure aborts the whole run; there is no
// per-job isolation, no retry and no rollback.
type Pipeline struct {
	Client    *http.Client
	RepoURL   string
	RepoToken string
	DagsPath  string
	JobsPath  string
	Logger    *slog.Logger
}

// Run processes all jobs. Destination paths are validated once, before any
// job is touched; the workspace is removed on every return path.
func (p *Pipeline) Run(jobs []deployment.Job) error {
	if err := RequirePaths(p.DagsPath, p.JobsPath); err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	workspace, err := OpenWorkspace()
	if err != nil {
		return err
	}
	defer workspace.Close()

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	for _, job := range jobs {
		if job.Version == "" {
			return fmt.Errorf("job %q has no version", job.Name)
		}
		p.Logger.Info("deploying job", "package", job.Name, "version", job.Version)

		jobDir, err := workspace.JobDir(job.Name)
		if err != nil {
			return err
		}
		archivePath, err := fetch(client, p.RepoURL, p.RepoToken, job, jobDir)
		if err != nil {
			return err
		}
		if err := extract(archivePath); err != nil {
			return err
		}
		if err := render(jobDir, job); err != nil {
			return err
		}
		if err := place(jobDir, job.Name, p.DagsPath, p.JobsPath); err != nil {
			return err
		}
	}
	return nil
}
