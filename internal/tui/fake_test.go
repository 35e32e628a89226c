package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tmuxdir/internal/tmux"
)

// fakeBackend records picker calls without touching tmux or the filesystem.
type fakeBackend struct {
	dirs     []string
	dirsErr  error
	sessions []tmux.Session
	attached bool
	binErr   error
	openErr  error
	killErr  error

	opened   []string
	ensured  []string
	switched []string
	killed   []string
	ignored  []string
}

func (f *fakeBackend) ListDirs() ([]string, error) { return f.dirs, f.dirsErr }

func (f *fakeBackend) Ignore(path string) (bool, error) {
	f.ignored = append(f.ignored, path)
	var kept []string
	for _, d := range f.dirs {
		if d != path {
			kept = append(kept, d)
		}
	}
	f.dirs = kept
	return true, nil
}

func (f *fakeBackend) ListSessions(context.Context) ([]tmux.Session, error) {
	return f.sessions, nil
}

func (f *fakeBackend) IsAttached() bool { return f.attached }

func (f *fakeBackend) CheckBinaryPresent(context.Context) (bool, error) {
	return f.binErr == nil, f.binErr
}

func (f *fakeBackend) OpenOrCreateSessionFor(_ context.Context, path string) (string, error) {
	f.opened = append(f.opened, path)
	return sessionNameFor(path), f.openErr
}

func (f *fakeBackend) EnsureSessionFor(_ context.Context, path string) (string, error) {
	f.ensured = append(f.ensured, path)
	return sessionNameFor(path), f.openErr
}

func (f *fakeBackend) SwitchTo(_ context.Context, name string) error {
	f.switched = append(f.switched, name)
	return f.openErr
}

func (f *fakeBackend) DeleteSession(_ context.Context, name string) error {
	if f.killErr != nil {
		return f.killErr
	}
	f.killed = append(f.killed, name)
	var kept []tmux.Session
	for _, s := range f.sessions {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

func sessionNameFor(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func session(name string, epoch int64) tmux.Session {
	return tmux.Session{Name: name, CreatedEpoch: epoch, CreatedAt: time.Unix(epoch, 0)}
}

// newTestModel returns a sized model with the backend's projects and
// sessions already loaded.
func newTestModel(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := NewModel(Options{Backend: backend, Theme: "mocha"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = updated.(Model)
	m = apply(t, m, m.loadProjects())
	m = apply(t, m, m.loadSessions())
	return m
}

// runCmd executes cmd and every command batched inside it.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// apply runs cmd and feeds every resulting message back into the model.
// Follow-up commands are not run.
func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, s string) (Model, tea.Cmd) {
	updated, cmd := m.Update(key(s))
	return updated.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}
