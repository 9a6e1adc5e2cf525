package deploy

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// extract unpacks an archive next to itself and removes the archive file.
// Supported formats: .zip, .tar.gz/.tgz, .tar.xz, .tar.zst. Only regular
// file entries are written; modes are preserved.
func extract(archivePath string) error {
	dir := filepath.Dir(archivePath)
	content, err := os.ReadFile(archivePath)
	if err != nil {
		return err
	}

	entries, err := readArchiveEntries(content, archivePath)
	if err != nil {
		return fmt.Errorf("extract %s: %w", filepath.Base(archivePath), err)
	}
	for _, entry := range entries {
		target, err := resolveEntryPath(dir, entry.path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		mode := entry.mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, entry.body, mode); err != nil {
			return err
		}
	}
	return os.Remove(archivePath)
}

type archiveEntry struct {
	path string
	body []byte
	mode os.FileMode
}

func readArchiveEntries(content []byte, name string) ([]archiveEntry, error) {
	switch {
	case strings.HasSuffix(name, ".zip"):
		return readZipEntries(content)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		reader, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return readTarEntries(reader)
	case strings.HasSuffix(name, ".tar.xz"):
		reader, err := xz.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		return readTarEntries(reader)
	case strings.HasSuffix(name, ".tar.zst"):
		decoder, err := zstd.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		return readTarEntries(decoder)
	default:
		return nil, fmt.Errorf("unsupported archive format %q", name)
	}
}

func readZipEntries(content []byte) ([]archiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	var entries []archiveEntry
	for _, file := range reader.File {
		if !file.Mode().IsRegular() {
			continue
		}
		path, err := normalizeEntryName(file.Name)
		if err != nil {
			return nil, err
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, archiveEntry{path: path, body: body, mode: file.Mode().Perm()})
	}
	return entries, nil
}

func readTarEntries(reader io.Reader) ([]archiveEntry, error) {
	tarReader := tar.NewReader(reader)
	var entries []archiveEntry
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.FileInfo().Mode().IsRegular() {
			continue
		}
		path, err := normalizeEntryName(header.Name)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archiveEntry{path: path, body: body, mode: header.FileInfo().Mode().Perm()})
	}
	return entries, nil
}

func normalizeEntryName(value string) (string, error) {
	cleaned := filepath.Clean(value)
	cleaned = strings.TrimPrefix(cleaned, "./")
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("invalid archive entry path %q", value)
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes root: %q", value)
	}
	return filepath.ToSlash(cleaned), nil
}

func resolveEntryPath(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	cleanTarget := filepath.Clean(target)
	if cleanTarget != cleanRoot && !strings.HasPrefix(cleanTarget, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes target root: %q", rel)
	}
	return target, nil
}
