// pattern: Imperative Shell

package registry

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"tmuxdir/internal/discovery"
	"tmuxdir/internal/logging"
	"tmuxdir/internal/store"
)

// StateStore persists the bookmarked and ignored sets.
type StateStore interface {
	Load() (store.State, error)
	Save(store.State) error
}

// Finder locates project roots below a directory.
type Finder interface {
	FindProjects(rootDir string, markers []string, maxDepth int, eager bool) ([]string, error)
}

// Options configures a Registry.
type Options struct {
	Store     StateStore
	Finder    Finder
	BaseDirs  []string
	Markers   []string
	MaxDepth  int
	EagerMode bool
	Logger    *logging.ScopedLogger
}

// Registry owns the bookmarked and ignored directory sets. Every mutation is
// persisted before it returns.
type Registry struct {
	store    StateStore
	finder   Finder
	baseDirs []string
	markers  []string
	maxDepth int
	eager    bool
	logger   *logging.ScopedLogger

	mu      sync.Mutex
	dirs    map[string]string
	ignored map[string]string
}

// New loads persisted state. A load failure is logged and leaves both sets
// empty. Entries that are no longer directories are pruned and the pruned
// state is written back.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	finder := opts.Finder
	if finder == nil {
		finder = discovery.NewScanner(discovery.Options{}, logger)
	}

	r := &Registry{
		store:    opts.Store,
		finder:   finder,
		baseDirs: slices.Clone(opts.BaseDirs),
		markers:  slices.Clone(opts.Markers),
		maxDepth: opts.MaxDepth,
		eager:    opts.EagerMode,
		logger:   logger,
		dirs:     make(map[string]string),
		ignored:  make(map[string]string),
	}
	r.load()
	return r
}

func (r *Registry) load() {
	state, err := r.store.Load()
	if err != nil {
		r.logger.Warn("failed to load saved directories, starting empty", "error", err)
		return
	}

	pruned := 0
	for k := range state.Dirs {
		if isDir(k) {
			r.dirs[k] = k
		} else {
			pruned++
		}
	}
	for k := range state.IgnoredDirs {
		if isDir(k) {
			r.ignored[k] = k
		} else {
			pruned++
		}
	}

	if pruned == 0 {
		return
	}
	r.logger.Info("pruned missing directories", "count", pruned)
	if err := r.save(); err != nil {
		r.logger.Warn("failed to save pruned directories", "error", err)
	}
}

// save writes both sets. Callers hold r.mu, except during construction.
func (r *Registry) save() error {
	state := store.NewState()
	for k, v := range r.dirs {
		state.Dirs[k] = v
	}
	for k, v := range r.ignored {
		state.IgnoredDirs[k] = v
	}
	if err := r.store.Save(state); err != nil {
		if errors.Is(err, store.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}
	return nil
}

// Add bookmarks every project found below dir and returns all of them,
// including ones that were already bookmarked. An ignored dir yields nothing.
func (r *Registry) Add(dir string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ignored[dir]; ok {
		r.logger.Debug("not adding ignored directory", "dir", dir)
		return []string{}, nil
	}

	found, err := r.finder.FindProjects(dir, r.markers, r.maxDepth, r.eager)
	if err != nil {
		return nil, err
	}

	for _, p := range found {
		if _, ok := r.dirs[p]; ok {
			continue
		}
		r.dirs[p] = p
		if err := r.save(); err != nil {
			return found, err
		}
		r.logger.Info("bookmarked directory", "dir", p)
	}
	if found == nil {
		found = []string{}
	}
	return found, nil
}

// Ignore hides dir from listings and future Add calls. Bookmarks are kept.
func (r *Registry) Ignore(dir string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ignored[dir] = dir
	if err := r.save(); err != nil {
		return false, err
	}
	r.logger.Info("ignored directory", "dir", dir)
	return true, nil
}

// ClearAddedDir removes one bookmark and reports whether it existed.
func (r *Registry) ClearAddedDir(dir string) (bool, error) {
	return r.clearOne(r.dirs, dir, "bookmark")
}

// ClearIgnoredDir removes one ignored entry and reports whether it existed.
func (r *Registry) ClearIgnoredDir(dir string) (bool, error) {
	return r.clearOne(r.ignored, dir, "ignored entry")
}

func (r *Registry) clearOne(set map[string]string, dir, what string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := set[dir]; !ok {
		return false, nil
	}
	delete(set, dir)
	if err := r.save(); err != nil {
		return false, err
	}
	r.logger.Info("removed "+what, "dir", dir)
	return true, nil
}

// ClearAddedDirs removes every bookmark.
func (r *Registry) ClearAddedDirs() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.dirs)
	if err := r.save(); err != nil {
		return false, err
	}
	r.logger.Info("cleared all bookmarks")
	return true, nil
}

// ClearIgnoredDirs removes every ignored entry.
func (r *Registry) ClearIgnoredDirs() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.ignored)
	if err := r.save(); err != nil {
		return false, err
	}
	r.logger.Info("cleared all ignored entries")
	return true, nil
}

// ListAdded returns the bookmarked directories, sorted.
func (r *Registry) ListAdded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.dirs)
}

// ListIgnored returns the ignored directories, sorted.
func (r *Registry) ListIgnored() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.ignored)
}

// IsIgnored reports whether dir is in the ignored set.
func (r *Registry) IsIgnored(dir string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ignored[dir]
	return ok
}

// Roots returns the scan roots: base directories followed by bookmarks,
// without duplicates.
func (r *Registry) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roots()
}

func (r *Registry) roots() []string {
	seen := make(map[string]bool, len(r.baseDirs)+len(r.dirs))
	var roots []string
	for _, d := range r.baseDirs {
		if !seen[d] {
			seen[d] = true
			roots = append(roots, d)
		}
	}
	for _, d := range sortedKeys(r.dirs) {
		if !seen[d] {
			seen[d] = true
			roots = append(roots, d)
		}
	}
	return roots
}

// ListDirs scans every root and returns the visible projects, sorted and
// without duplicates. A root that fails to scan does not hide results from
// the others; its error is returned joined with any other failures.
func (r *Registry) ListDirs() ([]string, error) {
	r.mu.Lock()
	roots := r.roots()
	ignored := make(map[string]bool, len(r.ignored))
	for k := range r.ignored {
		ignored[k] = true
	}
	r.mu.Unlock()

	seen := make(map[string]bool)
	var errs []error
	for _, root := range roots {
		found, err := r.finder.FindProjects(root, r.markers, r.maxDepth, r.eager)
		if err != nil {
			r.logger.Warn("failed to scan root", "root", root, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, p := range found {
			if !ignored[p] {
				seen[p] = true
			}
		}
	}

	dirs := make([]string, 0, len(seen))
	for p := range seen {
		dirs = append(dirs, p)
	}
	slices.Sort(dirs)
	return dirs, errors.Join(errs...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
