// pattern: Imperative Shell

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tmuxdir/internal/logging"
	"tmuxdir/internal/tmux"
)

// actionTimeout bounds every tmux or filesystem call made from the picker.
const actionTimeout = 10 * time.Second

// Backend is the operation surface the picker drives. *manager.Manager
// implements it.
type Backend interface {
	ListDirs() ([]string, error)
	Ignore(path string) (bool, error)
	ListSessions(ctx context.Context) ([]tmux.Session, error)
	IsAttached() bool
	CheckBinaryPresent(ctx context.Context) (bool, error)
	OpenOrCreateSessionFor(ctx context.Context, path string) (string, error)
	EnsureSessionFor(ctx context.Context, path string) (string, error)
	SwitchTo(ctx context.Context, name string) error
	DeleteSession(ctx context.Context, name string) error
}

// Tab identifies the list shown in the content area.
type Tab int

const (
	TabProjects Tab = iota
	TabSessions
)

func (t Tab) String() string {
	if t == TabSessions {
		return "Sessions"
	}
	return "Projects"
}

// StatusLevel controls how the status bar message is rendered.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusLoading
	StatusSuccess
	StatusWarning
	StatusError
)

// Options configures a picker Model.
type Options struct {
	Backend Backend
	Theme   string
	Logger  *logging.ScopedLogger
	// Entries feeds WARN and ERROR log lines into the status bar. Optional.
	Entries <-chan logging.LogEntry
}

// Model represents the picker state.
type Model struct {
	width  int
	height int
	styles *Styles

	backend Backend
	logger  *logging.ScopedLogger
	entries <-chan logging.LogEntry

	activeTab   Tab
	projectList list.Model
	sessionList list.Model
	delegate    rowDelegate

	confirmOpen    bool
	confirmAction  string
	confirmTarget  string
	confirmMessage string

	statusLevel   StatusLevel
	statusMessage string
	statusSpinner spinner.Model

	lastCtrlCTime time.Time

	// attachTarget is the session the host attaches to after the picker exits.
	attachTarget string
}

// NewModel creates a picker over the given backend.
func NewModel(opts Options) Model {
	styles := NewStyles(opts.Theme)
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	delegate := newRowDelegate(styles)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.AccentStyle()

	return Model{
		styles:        styles,
		backend:       opts.Backend,
		logger:        logger,
		entries:       opts.Entries,
		projectList:   newList(delegate),
		sessionList:   newList(delegate),
		delegate:      delegate,
		statusSpinner: s,
	}
}

func newList(delegate list.ItemDelegate) list.Model {
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkBinary(),
		m.loadProjects(),
		m.loadSessions(),
		m.consumeLogEntries(),
	)
}

// AttachTarget returns the session the host should attach to once the
// program has exited, or "" when nothing was selected.
func (m Model) AttachTarget() string {
	return m.attachTarget
}

// ActiveTab returns the tab currently shown.
func (m Model) ActiveTab() Tab {
	return m.activeTab
}

// activeList returns a pointer to the list of the current tab.
func (m *Model) activeList() *list.Model {
	if m.activeTab == TabSessions {
		return &m.sessionList
	}
	return &m.projectList
}

func (m Model) selectedProject() (projectItem, bool) {
	it, ok := m.projectList.SelectedItem().(projectItem)
	return it, ok
}

func (m Model) selectedSession() (sessionItem, bool) {
	it, ok := m.sessionList.SelectedItem().(sessionItem)
	return it, ok
}

func (m *Model) setStatus(level StatusLevel, msg string) {
	m.statusLevel = level
	m.statusMessage = msg
}

// setLoading shows msg next to the spinner and starts it.
func (m *Model) setLoading(msg string) tea.Cmd {
	m.setStatus(StatusLoading, msg)
	return m.statusSpinner.Tick
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
}

func (m *Model) resize() {
	layout := ComputeLayout(m.width, m.height)
	h := layout.ContentListHeight()
	m.projectList.SetSize(m.width, h)
	m.sessionList.SetSize(m.width, h)
}
