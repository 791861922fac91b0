// Package archive watches a staging directory for dropped export archives
// and unpacks them into the pipeline's input root.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the zip archive at zipPath into destDir. Entries that
// would escape destDir are rejected.
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", zipPath, err)
	}
	defer r.Close()

	destAbs, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("archive: resolve dest: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, destAbs); err != nil {
			return fmt.Errorf("archive: %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, destAbs string) error {
	target := filepath.Join(destAbs, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(filepath.Clean(target), destAbs+string(os.PathSeparator)) {
		return fmt.Errorf("entry escapes destination")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
