package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator drops compiled templates. *render.Renderer implements it.
type Invalidator interface {
	Forget(identity string) int
	ClearCache()
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher logger.
// Default: zap.NewNop()
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnChange registers a callback invoked after every invalidation with the
// identity of the changed template, or of the directory that appeared.
func OnChange(fn func(identity string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// IgnorePaths skips events for the given files, such as rendered output
// written under the watched root.
func IgnorePaths(paths ...string) WatcherOption {
	return func(w *Watcher) {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				w.ignored[abs] = true
			}
		}
	}
}

// Watcher invalidates compiled templates when files under a directory change.
// Directories created after the watcher started are watched too.
type Watcher struct {
	root     string
	target   Invalidator
	logger   *zap.Logger
	onChange func(identity string)
	ignored  map[string]bool

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool
}

// NewWatcher watches root recursively and invalidates target on change.
func NewWatcher(root string, target Invalidator, options ...WatcherOption) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("loader: watcher needs a target to invalidate")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    filepath.Clean(root),
		target:  target,
		logger:  zap.NewNop(),
		watcher: fsw,
		watched: map[string]bool{},
		ignored: map[string]bool{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}

	if err := w.watchTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Chmod == event.Op || w.isIgnored(event.Name) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("template watcher cannot watch directory",
					zap.String("path", event.Name),
					zap.Error(err),
				)
			}
			// Files may have been written before the directory was watched.
			w.target.ClearCache()
			if identity, ok := w.identity(event.Name); ok {
				w.changed(identity)
			}
			return
		}
	}

	identity, ok := w.identity(event.Name)
	if !ok {
		return
	}
	removed := w.target.Forget(identity)
	w.logger.Debug("template changed",
		zap.String("identity", identity),
		zap.String("op", event.Op.String()),
		zap.Int("entries", removed),
	)
	w.changed(identity)
}

func (w *Watcher) changed(identity string) {
	if w.onChange != nil {
		w.onChange(identity)
	}
}

func (w *Watcher) isIgnored(name string) bool {
	if len(w.ignored) == 0 {
		return false
	}
	abs, err := filepath.Abs(name)
	return err == nil && w.ignored[abs]
}

func (w *Watcher) identity(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watch(p)
	})
}

func (w *Watcher) watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}
