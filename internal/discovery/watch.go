// pattern: Imperative Shell

package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tmuxdir/internal/logging"
)

// DefaultDebounce is how long the watcher waits for filesystem activity to
// settle before reporting a change.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports when projects may have appeared or disappeared under a set
// of scan roots. Every directory that can hold a project marker is watched:
// the root and its subdirectories down to maxDepth-1 levels below it.
type Watcher struct {
	watcher  *fsnotify.Watcher
	maxDepth int
	debounce time.Duration
	logger   *logging.ScopedLogger

	// levels maps each watched directory to its distance below its root.
	// Only Run's goroutine touches it once NewWatcher returns.
	levels map[string]int

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher starts watching roots to the same depth a Scanner with maxDepth
// searches. Roots that do not exist are skipped.
func NewWatcher(roots []string, maxDepth int, debounce time.Duration, logger *logging.ScopedLogger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		maxDepth: maxDepth,
		debounce: debounce,
		logger:   logger,
		levels:   make(map[string]int),
	}
	for _, root := range roots {
		w.addTree(filepath.Clean(root), 0)
	}
	return w, nil
}

// Watched returns the directories currently being watched.
func (w *Watcher) Watched() []string {
	return w.watcher.WatchList()
}

// addTree watches dir, sitting level steps below its root, and every
// subdirectory above the deepest level a marker can appear at.
func (w *Watcher) addTree(dir string, level int) {
	if level >= w.maxDepth {
		return
	}
	if prev, ok := w.levels[dir]; ok && prev <= level {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("cannot watch directory", "dir", dir, "error", err)
		return
	}
	w.levels[dir] = level

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addTree(filepath.Join(dir, entry.Name()), level+1)
		}
	}
}

// addCreated extends the watch to a directory created under a watched one.
func (w *Watcher) addCreated(path string) {
	parent, ok := w.levels[filepath.Dir(path)]
	if !ok {
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		w.addTree(path, parent+1)
	}
}

// forget drops path and everything below it so a directory recreated at the
// same place is watched again.
func (w *Watcher) forget(path string) {
	prefix := path + string(filepath.Separator)
	for dir := range w.levels {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.levels, dir)
		}
	}
}

// Run delivers debounced change notifications to onChange until ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// New directories need their own watch so a marker created
			// inside them is noticed.
			if event.Has(fsnotify.Create) {
				w.addCreated(event.Name)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}
			w.logger.Debug("filesystem change", "path", event.Name, "op", event.Op.String())
			w.schedule(onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, onChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
