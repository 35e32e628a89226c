// pattern: Imperative Shell

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tmuxdir/internal/logging"
	"tmuxdir/internal/tmux"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// maxLogBatch caps how many queued log entries one logEntriesMsg carries.
const maxLogBatch = 50

const quitHint = "ctrl+c ctrl+c to quit"

type projectsLoadedMsg struct {
	dirs []string
	err  error
}

type sessionsLoadedMsg struct {
	sessions []tmux.Session
	err      error
}

type binaryCheckMsg struct {
	err error
}

// sessionOpenedMsg reports the outcome of enter on a project or session.
type sessionOpenedMsg struct {
	name   string
	attach bool // Outside tmux: quit and let the host attach
	err    error
}

type actionDoneMsg struct {
	action string
	target string
	err    error
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct{}

// RescanMsg asks the picker to reload projects and sessions. The host sends
// it when the filesystem watcher reports a change.
type RescanMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.statusLevel != StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.statusSpinner, cmd = m.statusSpinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case projectsLoadedMsg:
		if m.statusLevel == StatusLoading {
			m.clearStatus()
		}
		if msg.err != nil {
			// Partial results still carry every root that could be scanned.
			m.logger.Warn("project scan incomplete", "error", msg.err)
			m.setStatus(StatusWarning, "Some roots could not be scanned: "+msg.err.Error())
		}
		cmd := m.projectList.SetItems(projectItems(msg.dirs))
		return m, cmd

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("listing sessions failed", "error", msg.err)
			m.setStatus(StatusError, "Listing sessions failed: "+msg.err.Error())
			return m, nil
		}
		m.delegate = m.delegate.WithLive(liveSessions(msg.sessions))
		m.projectList.SetDelegate(m.delegate)
		m.sessionList.SetDelegate(m.delegate)
		cmd := m.sessionList.SetItems(sessionItems(msg.sessions))
		return m, cmd

	case binaryCheckMsg:
		if msg.err != nil {
			m.setStatus(StatusWarning, "tmux is not available: "+msg.err.Error())
		}
		return m, nil

	case RescanMsg:
		return m, tea.Batch(m.loadProjects(), m.loadSessions())

	case sessionOpenedMsg:
		if msg.err != nil {
			m.setStatus(StatusError, fmt.Sprintf("Opening %s failed: %v", msg.name, msg.err))
			return m, m.loadSessions()
		}
		if msg.attach {
			m.attachTarget = msg.name
		}
		m.logger.Info("session selected", "session", msg.name, "attach", msg.attach)
		return m, tea.Quit

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case logEntriesMsg:
		for _, entry := range msg.entries {
			// Loading progress owns the status bar until it finishes.
			if entry.IsProblem() && m.statusLevel != StatusLoading {
				level := StatusWarning
				if entry.Level == "ERROR" {
					level = StatusError
				}
				m.setStatus(level, entry.Message)
			}
		}
		return m, m.consumeLogEntries()

	case clearStatusMsg:
		// Only clear if still showing the quit hint (don't clobber other status)
		if m.statusLevel == StatusInfo && m.statusMessage == quitHint {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key pressed", "key", msg.String(), "tab", m.activeTab.String(), "confirmOpen", m.confirmOpen)

	// Handle quit shortcuts first (ctrl+d always, ctrl+c double-press)
	if msg.Type == tea.KeyCtrlD {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		m.setStatus(StatusInfo, quitHint)
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })
	}

	if m.confirmOpen {
		return m.handleConfirmKey(msg)
	}

	// While typing a filter every key belongs to the list.
	if m.activeList().FilterState() == list.Filtering {
		return m.forwardToList(msg)
	}

	if msg.Type == tea.KeyEscape {
		if m.statusLevel == StatusError || m.statusLevel == StatusWarning {
			m.clearStatus()
			return m, nil
		}
		if m.activeList().FilterState() == list.FilterApplied {
			return m.forwardToList(msg)
		}
		return m, tea.Quit
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.activeTab == TabProjects {
			m.activeTab = TabSessions
		} else {
			m.activeTab = TabProjects
		}
		return m, nil

	case "1":
		m.activeTab = TabProjects
		return m, nil

	case "2":
		m.activeTab = TabSessions
		return m, nil

	case "r":
		cmd := m.setLoading("Rescanning...")
		return m, tea.Batch(cmd, m.loadProjects(), m.loadSessions())

	case "enter":
		return m.handleEnter()

	case "i":
		if m.activeTab != TabProjects {
			return m, nil
		}
		if it, ok := m.selectedProject(); ok {
			m.openConfirm("ignore_project", it.path, fmt.Sprintf("Ignore %s?\nIt will no longer be listed.", it.path))
		}
		return m, nil

	case "x":
		if m.activeTab != TabSessions {
			return m, nil
		}
		if it, ok := m.selectedSession(); ok {
			m.openConfirm("kill_session", it.session.Name, fmt.Sprintf("Kill session %s?", it.session.Name))
		}
		return m, nil
	}

	return m.forwardToList(msg)
}

func (m Model) forwardToList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.activeTab == TabSessions {
		m.sessionList, cmd = m.sessionList.Update(msg)
	} else {
		m.projectList, cmd = m.projectList.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TabProjects:
		it, ok := m.selectedProject()
		if !ok {
			return m, nil
		}
		cmd := m.setLoading("Opening " + it.session + "...")
		return m, tea.Batch(cmd, m.openProject(it.path))

	case TabSessions:
		it, ok := m.selectedSession()
		if !ok {
			return m, nil
		}
		cmd := m.setLoading("Switching to " + it.session.Name + "...")
		return m, tea.Batch(cmd, m.openSession(it.session.Name))
	}
	return m, nil
}

func (m *Model) openConfirm(action, target, message string) {
	m.confirmOpen = true
	m.confirmAction = action
	m.confirmTarget = target
	m.confirmMessage = message
}

func (m *Model) closeConfirm() {
	m.confirmOpen = false
	m.confirmAction = ""
	m.confirmTarget = ""
	m.confirmMessage = ""
}

// handleConfirmKey processes key events while the confirmation dialog is open.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.closeConfirm()
		return m, nil

	case tea.KeyEnter:
		action := m.confirmAction
		target := m.confirmTarget
		m.closeConfirm()

		switch action {
		case "ignore_project":
			m.logger.Info("ignoring project", "dir", target)
			cmd := m.setLoading("Ignoring " + target + "...")
			return m, tea.Batch(cmd, m.ignoreProject(target))

		case "kill_session":
			m.logger.Info("killing session", "session", target)
			cmd := m.setLoading("Killing " + target + "...")
			return m, tea.Batch(cmd, m.killSession(target))
		}
		return m, nil
	}

	// 'y' also confirms
	if msg.String() == "y" || msg.String() == "Y" {
		return m.handleConfirmKey(tea.KeyMsg{Type: tea.KeyEnter})
	}

	// 'n' also cancels
	if msg.String() == "n" || msg.String() == "N" {
		return m.handleConfirmKey(tea.KeyMsg{Type: tea.KeyEscape})
	}

	return m, nil
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("action failed", "action", msg.action, "target", msg.target, "error", msg.err)
		m.setStatus(StatusError, fmt.Sprintf("%s %s failed: %v", actionLabel(msg.action), msg.target, msg.err))
		return m, nil
	}

	switch msg.action {
	case "ignore_project":
		m.setStatus(StatusSuccess, "Ignored "+msg.target)
		return m, m.loadProjects()
	case "kill_session":
		m.setStatus(StatusSuccess, "Killed "+msg.target)
		return m, m.loadSessions()
	}
	return m, nil
}

func actionLabel(action string) string {
	switch action {
	case "ignore_project":
		return "Ignoring"
	case "kill_session":
		return "Killing"
	}
	return action
}

func (m Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		dirs, err := m.backend.ListDirs()
		return projectsLoadedMsg{dirs: dirs, err: err}
	}
}

func (m Model) loadSessions() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		sessions, err := m.backend.ListSessions(ctx)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m Model) checkBinary() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		_, err := m.backend.CheckBinaryPresent(ctx)
		return binaryCheckMsg{err: err}
	}
}

// openProject switches to the project's session inside tmux. Outside tmux it
// only makes sure the session exists; attaching needs the terminal, which the
// host takes back after the program exits.
func (m Model) openProject(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		if m.backend.IsAttached() {
			name, err := m.backend.OpenOrCreateSessionFor(ctx, path)
			return sessionOpenedMsg{name: name, err: err}
		}
		name, err := m.backend.EnsureSessionFor(ctx, path)
		return sessionOpenedMsg{name: name, attach: true, err: err}
	}
}

func (m Model) openSession(name string) tea.Cmd {
	return func() tea.Msg {
		if !m.backend.IsAttached() {
			return sessionOpenedMsg{name: name, attach: true}
		}
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		return sessionOpenedMsg{name: name, err: m.backend.SwitchTo(ctx, name)}
	}
}

func (m Model) ignoreProject(path string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.backend.Ignore(path)
		return actionDoneMsg{action: "ignore_project", target: path, err: err}
	}
}

func (m Model) killSession(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		err := m.backend.DeleteSession(ctx, name)
		return actionDoneMsg{action: "kill_session", target: name, err: err}
	}
}

// consumeLogEntries waits for the next log entry and drains whatever else is
// queued behind it.
func (m Model) consumeLogEntries() tea.Cmd {
	if m.entries == nil {
		return nil
	}
	entries := m.entries
	return func() tea.Msg {
		first, ok := <-entries
		if !ok {
			return nil
		}
		batch := []logging.LogEntry{first}
		for len(batch) < maxLogBatch {
			select {
			case e, ok := <-entries:
				if !ok {
					return logEntriesMsg{entries: batch}
				}
				batch = append(batch, e)
			default:
				return logEntriesMsg{entries: batch}
			}
		}
		return logEntriesMsg{entries: batch}
	}
}
