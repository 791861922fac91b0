package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch subscribes to change notifications under the input root and triggers
// a full pass on relevant events, debounced so bursts collapse into a single
// pass. An unconditional pass runs first, covering files present before the
// watcher started. Returns when ctx is cancelled; an in-flight pass always
// finishes.
//
// Directories created at runtime are added to the watch list. Over-triggering
// is harmless (a pass is idempotent), so any create or write schedules one.
func (p *Pipeline) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, p.inputRoot); err != nil {
		return err
	}
	p.logger.Info("watcher: started", slog.String("root", p.inputRoot))

	p.RunPass()

	var passTimer *time.Timer
	var passCh <-chan time.Time

	schedulePass := func() {
		if passTimer == nil {
			passTimer = time.NewTimer(p.debounce)
			passCh = passTimer.C
		} else {
			passTimer.Reset(p.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if passTimer != nil {
				passTimer.Stop()
			}
			p.logger.Info("watcher: stopped")
			return nil

		case <-passCh:
			p.RunPass()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						p.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}

			p.logger.Debug("watcher: change observed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			schedulePass()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
