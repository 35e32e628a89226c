// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"tmuxdir/internal/naming"
	"tmuxdir/internal/tmux"
)

// projectItem is a discovered project directory and the session it maps to.
type projectItem struct {
	path    string
	session string
}

func (i projectItem) Title() string       { return i.path }
func (i projectItem) Description() string { return i.session }
func (i projectItem) FilterValue() string { return i.path }

// sessionItem wraps a live tmux session.
type sessionItem struct {
	session tmux.Session
}

func (i sessionItem) Title() string { return i.session.Name }

// Description renders "name (created time)".
func (i sessionItem) Description() string {
	return fmt.Sprintf("%s (%s)", i.session.Name, i.session.CreatedTime())
}

func (i sessionItem) FilterValue() string { return i.session.Name }

// rowDelegate renders both project and session rows on a single line.
type rowDelegate struct {
	styles *Styles
	live   map[string]bool // Session names currently running
}

func newRowDelegate(styles *Styles) rowDelegate {
	return rowDelegate{
		styles: styles,
		live:   make(map[string]bool),
	}
}

// WithLive returns a delegate that marks the given running sessions.
func (d rowDelegate) WithLive(live map[string]bool) rowDelegate {
	d.live = live
	return d
}

func (d rowDelegate) Height() int  { return 1 }
func (d rowDelegate) Spacing() int { return 0 }

func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	isSelected := index == m.Index()

	indicator := "  "
	textStyle := d.styles.RowStyle()
	if isSelected {
		indicator = d.styles.SelectedRowStyle().Render("▸ ")
		textStyle = d.styles.SelectedRowStyle()
	}

	var bullet, text, detail string
	switch it := item.(type) {
	case projectItem:
		bullet = d.bullet(d.live[it.session])
		text = it.path
		detail = "→ " + it.session
	case sessionItem:
		bullet = d.bullet(true)
		text = it.Description()
		if it.session.IsActive() {
			detail = fmt.Sprintf("attached (%d)", it.session.Clients)
		}
	default:
		return
	}

	line := indicator + bullet + " " + textStyle.Render(text)
	if detail != "" {
		line += "  " + d.styles.MutedStyle().Render(detail)
	}
	if width := m.Width(); width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	_, _ = fmt.Fprint(w, line)
}

func (d rowDelegate) bullet(live bool) string {
	if live {
		return d.styles.LiveStyle().Render("●")
	}
	return d.styles.MutedStyle().Render("○")
}

// projectItems builds the project rows sorted by path, descending.
func projectItems(dirs []string) []list.Item {
	sorted := slices.Clone(dirs)
	slices.SortFunc(sorted, func(a, b string) int { return strings.Compare(b, a) })

	known := naming.KnownProjects(sorted)
	items := make([]list.Item, len(sorted))
	for i, d := range sorted {
		items[i] = projectItem{path: d, session: naming.DirToSessionName(d, known)}
	}
	return items
}

// sessionItems builds the session rows, newest first.
func sessionItems(sessions []tmux.Session) []list.Item {
	sorted := slices.Clone(sessions)
	tmux.SortByCreatedDesc(sorted)

	items := make([]list.Item, len(sorted))
	for i, s := range sorted {
		items[i] = sessionItem{session: s}
	}
	return items
}

// liveSessions indexes session names for the project bullets.
func liveSessions(sessions []tmux.Session) map[string]bool {
	live := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		live[s.Name] = true
	}
	return live
}
