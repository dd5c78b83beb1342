// Package watch reports debounced changes below a directory tree.
//
// Every directory that Skip does not reject is watched, including
// directories created after Run starts. Events arriving within the debounce
// window are coalesced into one OnChange call with the changed paths.
package watch

import (
	"context"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/esmap/pkg/errors"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

// Config configures Run.
type Config struct {
	// Root is the directory tree to watch.
	Root string

	// Skip reports whether the slash-separated root-relative path is
	// ignored. Skipped directories are not descended into. Nil skips
	// nothing.
	Skip func(rel string, isDir bool) bool

	// Debounce is the quiet period after the last event before OnChange
	// fires.
	Debounce time.Duration

	// OnChange receives the sorted root-relative paths that changed. An
	// error is logged and watching continues.
	OnChange func(ctx context.Context, changed []string) error

	Logger *log.Logger
}

// Run watches cfg.Root until ctx is cancelled. It returns nil on
// cancellation.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve %s", cfg.Root)
	}

	if info, err := os.Stat(root); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot watch %s", cfg.Root)
	} else if !info.IsDir() {
		return errors.New(errors.ErrCodeNotDirectory, "cannot watch %s: not a directory", cfg.Root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer fsw.Close()

	w := &watcher{root: root, cfg: cfg, fsw: fsw, logger: logger}
	if err := w.addTree(root); err != nil {
		return err
	}
	logger.Debug("watching", "root", root, "dirs", len(fsw.WatchList()))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New(errors.ErrCodeInternal, "watcher event channel closed")
			}
			rel, ok := w.rel(evt.Name)
			if !ok {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAdd(evt.Name, rel)
			}
			if w.skip(rel, false) {
				continue
			}
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			logger.Debug("change detected", "paths", len(changed))
			if cfg.OnChange != nil {
				if err := cfg.OnChange(ctx, changed); err != nil {
					logger.Error("change handler failed", "err", err)
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New(errors.ErrCodeInternal, "watcher error channel closed")
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

type watcher struct {
	root   string
	cfg    Config
	fsw    *fsnotify.Watcher
	logger *log.Logger
}

func (w *watcher) skip(rel string, isDir bool) bool {
	return w.cfg.Skip != nil && w.cfg.Skip(rel, isDir)
}

func (w *watcher) rel(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree registers dir and every directory below it that is not skipped.
// Unreadable directories are skipped with a warning.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("not watching", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(p); ok && w.skip(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", p)
		}
		return nil
	})
}

func (w *watcher) maybeAdd(name, rel string) {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() || w.skip(rel, true) {
		return
	}
	if err := w.addTree(name); err != nil {
		w.logger.Warn("watch new directory", "path", rel, "err", err)
	}
}
