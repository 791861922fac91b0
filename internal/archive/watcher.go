package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors stagingDir for new zip archives and extracts each one into
// destDir. Archives already present at startup are extracted first. Each
// archive is processed once; failures are logged and never fatal. Returns
// when ctx is cancelled.
//
// The only contract with the pipeline is the destination directory: the
// pipeline discovers extracted files through its own watcher.
func Watch(ctx context.Context, stagingDir, destDir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(stagingDir); err != nil {
		return err
	}
	logger.Info("archive: watching", slog.String("staging", stagingDir))

	processed := make(map[string]struct{})

	handle := func(path string) {
		if !strings.HasSuffix(strings.ToLower(path), ".zip") {
			return
		}
		if _, done := processed[path]; done {
			return
		}

		// A failed attempt stays unprocessed: Create can fire while the
		// archive is still being copied, and a later Write retries it.
		if err := Extract(path, destDir); err != nil {
			logger.Error("archive: extract failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return
		}
		processed[path] = struct{}{}
		logger.Info("archive: extracted",
			slog.String("path", path),
			slog.String("dest", destDir))
	}

	// Initial sweep covers archives dropped before the watcher started.
	if entries, err := os.ReadDir(stagingDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				handle(filepath.Join(stagingDir, e.Name()))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("archive: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				handle(ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("archive: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
