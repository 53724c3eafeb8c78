// Package watcher triggers re-imports when files in the decision directories change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for file events to settle.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called once per settled burst of file events. paths holds
// the changed files in the order they were first seen.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher runs fsnotify on a set of root directories.
type Watcher struct {
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
	onChange ChangeFunc
}

// New creates a Watcher. A zero debounce uses DefaultDebounce.
func New(roots []string, debounce time.Duration, logger *slog.Logger, onChange ChangeFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{roots: roots, debounce: debounce, logger: logger, onChange: onChange}
}

// Run processes file change events until ctx is cancelled.
//
// Every Create, Write, Remove or Rename under a root restarts the debounce
// timer; when it fires, onChange receives the accumulated paths. New
// directories created at runtime are added to the watch list.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := addDirsRecursive(fw, root); err != nil {
			return err
		}
		w.logger.Info("watcher: started", slog.String("root", root))
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending []string
		seen    = make(map[string]struct{})
	)

	schedule := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			pending = append(pending, path)
		}
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			paths := pending
			pending = nil
			seen = make(map[string]struct{})
			w.logger.Debug("watcher: change settled", slog.Int("files", len(paths)))
			if w.onChange != nil {
				w.onChange(ctx, paths)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						w.logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}

			if isHidden(ev.Name) {
				continue
			}
			schedule(ev.Name)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// isHidden reports whether the base name starts with a dot (editor swap
// files, .git and the like).
func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isHidden(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
