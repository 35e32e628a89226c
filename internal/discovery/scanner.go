// pattern: Imperative Shell

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"tmuxdir/internal/logging"
)

// Scanner finds project roots below a directory.
type Scanner struct {
	opts   Options
	logger *logging.ScopedLogger
}

// NewScanner creates a scanner with the given defaults for Scan.
func NewScanner(opts Options, logger *logging.ScopedLogger) *Scanner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{opts: opts, logger: logger}
}

// Options returns the scanner's configured options.
func (s *Scanner) Options() Options {
	return s.opts
}

// Scan runs FindProjects with the scanner's configured options.
func (s *Scanner) Scan(rootDir string) ([]string, error) {
	return s.FindProjects(rootDir, s.opts.Markers, s.opts.MaxDepth, s.opts.Eager)
}

// FindProjects looks for markers 1..maxDepth levels below rootDir and returns
// the directory holding each match. A marker at level 1 makes rootDir itself
// a project.
//
// Levels are searched in order. Unless eager is set the search stops after the
// first level that produced a match. Results keep traversal order and are not
// de-duplicated. A root that is not an existing directory yields no results
// and no error.
func (s *Scanner) FindProjects(rootDir string, markers []string, maxDepth int, eager bool) ([]string, error) {
	root := trimSeparator(rootDir)
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	info, err := os.Stat(root)
	if err != nil {
		// A path running through a regular file is as absent as a missing one.
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFilesystem, root, err)
	}
	if !info.IsDir() {
		return nil, nil
	}
	// Surface an unreadable root instead of reporting it as empty.
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFilesystem, root, err)
	}

	var found []string
	frontier := []string{root}

	for depth := 1; depth <= maxDepth; depth++ {
		for _, marker := range markers {
			for _, dir := range frontier {
				if hasEntry(dir, marker) {
					found = append(found, dir)
				}
			}
		}

		if len(found) > 0 && !eager {
			break
		}
		if depth == maxDepth {
			break
		}

		frontier = subdirectories(frontier)
		if len(frontier) == 0 {
			break
		}
	}

	s.logger.Debug("scanned root", "root", root, "found", len(found), "eager", eager)
	return found, nil
}

// trimSeparator strips one trailing separator, leaving "/" intact.
func trimSeparator(dir string) string {
	if len(dir) > 1 && strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir[:len(dir)-1]
	}
	return dir
}

func hasEntry(dir, name string) bool {
	_, err := os.Lstat(filepath.Join(dir, name))
	return err == nil
}

// subdirectories returns the child directories of every dir, following
// symlinks. Unreadable directories are skipped.
func subdirectories(dirs []string) []string {
	var next []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				next = append(next, path)
				continue
			}
			if entry.Type()&os.ModeSymlink != 0 {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					next = append(next, path)
				}
			}
		}
	}
	return next
}
