package deploy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/seshat-cli/seshat/pkg/deployment"
)

const templateSuffix = ".tmpl"

// render substitutes the job's parameters into every *.tmpl file under dir,
// writing the result alongside without the suffix and dropping the template.
// Pipeline-reserved keys are excluded from the data; a reference to a missing
// key fails the render.
func render(dir string, job deployment.Job) error {
	data := map[string]string{"version": job.Version}
	for key, value := range job.Params {
		if key == paramAsset || key == paramDigest {
			continue
		}
		data[key] = value
	}

	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, templateSuffix) {
			return nil
		}

		tmpl, err := template.New(filepath.Base(path)).Option("missingkey=error").ParseFiles(path)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(strings.TrimSuffix(path, templateSuffix),
			os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
		if err != nil {
			return err
		}
		if err := tmpl.Execute(out, data); err != nil {
			out.Close()
			return fmt.Errorf("render template %s: %w", entry.Name(), err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		return os.Remove(path)
	})
}
