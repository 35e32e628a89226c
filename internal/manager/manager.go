// pattern: Imperative Shell

package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tmuxdir/internal/logging"
	"tmuxdir/internal/naming"
	"tmuxdir/internal/registry"
	"tmuxdir/internal/tmux"
)

// ErrValidation is returned for path arguments that are not absolute
// existing directories.
var ErrValidation = errors.New("invalid path")

// Options configures a Manager.
type Options struct {
	Registry   *registry.Registry
	Controller *tmux.Controller
	Editor     string // Program started in new sessions
	EditorArgs string // Passed to the editor with -c; empty disables it
	Logger     *logging.ScopedLogger
}

// Manager combines the directory registry and the session controller behind
// the operations used by the CLI and the picker.
type Manager struct {
	registry   *registry.Registry
	controller *tmux.Controller
	editor     string
	editorArgs string
	logger     *logging.ScopedLogger
}

// New creates a Manager from already constructed collaborators.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		registry:   opts.Registry,
		controller: opts.Controller,
		editor:     opts.Editor,
		editorArgs: opts.EditorArgs,
		logger:     logger,
	}
}

// Add bookmarks the projects found at or below path.
func (m *Manager) Add(path string) ([]string, error) {
	if err := validateDir(path); err != nil {
		return nil, err
	}
	return m.registry.Add(path)
}

// Ignore hides path from project listings.
func (m *Manager) Ignore(path string) (bool, error) {
	if err := validateDir(path); err != nil {
		return false, err
	}
	return m.registry.Ignore(path)
}

// ListAdded returns the bookmarked directories.
func (m *Manager) ListAdded() []string {
	return m.registry.ListAdded()
}

// ListIgnored returns the ignored directories.
func (m *Manager) ListIgnored() []string {
	return m.registry.ListIgnored()
}

// ClearAdded removes one bookmark. The directory may no longer exist.
func (m *Manager) ClearAdded(path string) (bool, error) {
	if err := validateAbs(path); err != nil {
		return false, err
	}
	return m.registry.ClearAddedDir(path)
}

// ClearAddedAll removes every bookmark.
func (m *Manager) ClearAddedAll() (bool, error) {
	return m.registry.ClearAddedDirs()
}

// ClearIgnored removes one ignored entry. The directory may no longer exist.
func (m *Manager) ClearIgnored(path string) (bool, error) {
	if err := validateAbs(path); err != nil {
		return false, err
	}
	return m.registry.ClearIgnoredDir(path)
}

// ClearIgnoredAll removes every ignored entry.
func (m *Manager) ClearIgnoredAll() (bool, error) {
	return m.registry.ClearIgnoredDirs()
}

// ListDirs returns the visible projects. Projects from roots that scanned
// successfully are returned even when err reports a failed root.
func (m *Manager) ListDirs() ([]string, error) {
	return m.registry.ListDirs()
}

// Roots returns the directories scanned by ListDirs.
func (m *Manager) Roots() []string {
	return m.registry.Roots()
}

// DirToSessionName derives the session name for dir from the visible projects.
func (m *Manager) DirToSessionName(dir string) string {
	dirs, err := m.registry.ListDirs()
	if err != nil {
		m.logger.Warn("naming with partial project list", "error", err)
	}
	return naming.DirToSessionName(dir, naming.KnownProjects(dirs))
}

// ListSessions returns the live tmux sessions.
func (m *Manager) ListSessions(ctx context.Context) ([]tmux.Session, error) {
	return m.controller.ListSessions(ctx)
}

// IsAttached reports whether tmuxdir runs inside a tmux client.
func (m *Manager) IsAttached() bool {
	return m.controller.IsAttached()
}

// CheckBinaryPresent reports whether tmux can be run.
func (m *Manager) CheckBinaryPresent(ctx context.Context) (bool, error) {
	if err := m.controller.CheckBinaryPresent(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// OpenOrCreateSessionFor switches to the session for path, creating it first
// when needed. Outside tmux the terminal is attached to it instead.
func (m *Manager) OpenOrCreateSessionFor(ctx context.Context, path string) (string, error) {
	if err := validateDir(path); err != nil {
		return "", err
	}
	name := m.DirToSessionName(path)
	m.logger.Info("opening session", "dir", path, "session", name)
	if err := m.controller.SwitchOrCreate(ctx, name, path, m.editor, m.editorArgs); err != nil {
		return name, err
	}
	return name, nil
}

// EnsureSessionFor creates the session for path when it does not exist yet
// and returns its name without switching to it.
func (m *Manager) EnsureSessionFor(ctx context.Context, path string) (string, error) {
	if err := validateDir(path); err != nil {
		return "", err
	}
	name := m.DirToSessionName(path)
	exists, err := m.controller.ExistsSession(ctx, name)
	if err != nil {
		return name, err
	}
	if !exists {
		if err := m.controller.CreateSession(ctx, name, m.editor, path, m.editorArgs); err != nil {
			return name, err
		}
	}
	return name, nil
}

// SwitchTo switches the current client to an existing session.
func (m *Manager) SwitchTo(ctx context.Context, name string) error {
	return m.controller.SwitchSession(ctx, name)
}

// Attach attaches the terminal to an existing session.
func (m *Manager) Attach(ctx context.Context, name string) error {
	return m.controller.Attach(ctx, name)
}

// DeleteSession kills the named session.
func (m *Manager) DeleteSession(ctx context.Context, name string) error {
	m.logger.Info("deleting session", "session", name)
	return m.controller.KillSession(ctx, name)
}

func validateAbs(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q is not an absolute path", ErrValidation, path)
	}
	return nil
}

func validateDir(path string) error {
	if err := validateAbs(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s does not exist", ErrValidation, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrValidation, path)
	}
	return nil
}
