// Package watch reports batches of changed files under a set of directories.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long the watcher waits for changes to settle.
const DefaultDelay = 150 * time.Millisecond

// Watcher monitors directory trees and reports changed files in batches.
type Watcher struct {
	fs       *fsnotify.Watcher
	roots    []string
	ignored  []string
	delay    time.Duration
	onChange func([]string)
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore skips the given directories, typically the site output.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.ignored = append(w.ignored, abs)
			}
		}
	}
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher over roots. Roots may be files or directories;
// directories are watched recursively.
func New(roots []string, onChange func([]string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		delay:    DefaultDelay,
		onChange: onChange,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", r, err)
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	for _, r := range w.roots {
		if err := w.addTree(r); err != nil {
			return err
		}
	}

	debouncer := NewDebouncer(w.delay, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				debouncer.Add(event.Name)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it. A file root watches
// its parent directory.
func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("watch root missing", zap.String("path", root))
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// shouldIgnore skips hidden entries, editor temp files and ignored trees.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	for _, dir := range w.ignored {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
