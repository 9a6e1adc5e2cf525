package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dagsSubdir  = "dags"
	jobsSubdir  = "jobs"
	placeholder = ".gitkeep"
)

// place copies the rendered job artifacts into the platform directories:
// files under dags/ go flat into dagsPath, files under jobs/ keep their
// layout under jobsPath/<job name>. Anything else in the extracted tree is
// ignored.
func place(jobDir, jobName, dagsPath, jobsPath string) error {
	if err := copyTree(filepath.Join(jobDir, dagsSubdir), dagsPath); err != nil {
		return fmt.Errorf("deploy dag files for %s: %w", jobName, err)
	}
	if err := copyTree(filepath.Join(jobDir, jobsSubdir), filepath.Join(jobsPath, jobName)); err != nil {
		return fmt.Errorf("deploy job files for %s: %w", jobName, err)
	}
	return nil
}

// copyTree copies every regular file from src into dst, preserving relative
// layout and file modes. A missing src is a no-op.
func copyTree(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, content, info.Mode().Perm())
	})
}

// RemoveAll deletes previously placed dag and job files and restores the
// empty placeholder structure. Both directories must already exist.
func RemoveAll(dagsPath, jobsPath string) error {
	if err := RequirePaths(dagsPath, jobsPath); err != nil {
		return err
	}
	for _, dir := range []string{dagsPath, jobsPath} {
		if err := clearDir(dir); err != nil {
			return fmt.Errorf("restore %s: %w", dir, err)
		}
	}
	return nil
}

// clearDir removes every entry in dir and leaves a placeholder file so the
// empty directory survives in version control.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == placeholder {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	keep := filepath.Join(dir, placeholder)
	if _, err := os.Stat(keep); os.IsNotExist(err) {
		return os.WriteFile(keep, nil, 0o644)
	}
	return nil
}

// ErrPathMissing reports that a configured destination directory does not
// exist or is unusable.
var ErrPathMissing = errors.New("destination path missing")

// RequirePaths verifies the destination directories exist. Checked once, up
// front, for the whole run; a missing path aborts before any job starts.
func RequirePaths(dagsPath, jobsPath string) error {
	for _, dir := range []string{dagsPath, jobsPath} {
		if dir == "" {
			return fmt.Errorf("%w: dags_path and jobs_path must be configured", ErrPathMissing)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrPathMissing, dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %q is not a directory", ErrPathMissing, dir)
		}
	}
	return nil
}
