// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// View renders the picker.
func (m Model) View() string {
	// Confirmation dialog is a modal overlay
	if m.confirmOpen {
		return m.renderConfirmDialog()
	}

	layout := ComputeLayout(m.width, m.height)

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.TitleStyle().Render("tmuxdir"),
		m.styles.SubtitleStyle().Render(m.renderSubtitle()),
	)

	parts := []string{
		header,
		"",
		m.renderTabs(layout.Tabs.Width),
		m.renderContent(layout),
		"",
		m.renderStatusBar(layout.StatusBar.Width),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSubtitle() string {
	where := "outside tmux"
	if m.backend != nil && m.backend.IsAttached() {
		where = "inside tmux"
	}
	return fmt.Sprintf("%d projects • %d sessions • %s",
		len(m.projectList.Items()), len(m.sessionList.Items()), where)
}

func (m Model) renderTabs(width int) string {
	var tabs []string
	for _, t := range []Tab{TabProjects, TabSessions} {
		label := t.String()
		if t == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTabStyle().Render(label))
		} else {
			tabs = append(tabs, m.styles.InactiveTabStyle().Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	if gap := width - lipgloss.Width(row); gap > 0 {
		row += m.styles.SeparatorStyle().Render(strings.Repeat("─", gap))
	}
	return row
}

func (m Model) renderContent(layout Layout) string {
	l := m.projectList
	empty := "No projects found. Add one with: tmuxdir dirs add <path>"
	if m.activeTab == TabSessions {
		l = m.sessionList
		empty = "No tmux sessions running."
	}

	var body string
	if len(l.Items()) == 0 {
		body = m.styles.HelpStyle().Render(empty)
	} else {
		body = l.View()
	}

	return lipgloss.NewStyle().
		Width(layout.Content.Width).
		Height(layout.Content.Height).
		Render(body)
}

// renderConfirmDialog renders the confirmation dialog as a centered modal.
func (m Model) renderConfirmDialog() string {
	title := m.styles.TitleStyle().Render("Confirm")
	message := m.styles.InfoStyle().Render(m.confirmMessage)
	help := m.styles.HelpStyle().Render("Enter/y: confirm • Esc/n: cancel")

	view := lipgloss.JoinVertical(lipgloss.Left, title, "", message, "", help)
	boxed := m.styles.BoxStyle().Render(view)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxed)
	}
	return boxed
}

// renderStatusBar renders the status bar with operation feedback and help.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.statusSpinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusWarning:
		statusIcon = m.styles.WarningStyle().Render("!")
		messageStyle = m.styles.WarningStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default:
		messageStyle = m.styles.InfoStatusStyle()
	}

	var statusText string
	if statusIcon != "" {
		statusText = statusIcon + " " + messageStyle.Render(m.statusMessage)
	} else if m.statusMessage != "" {
		statusText = messageStyle.Render(m.statusMessage)
	}

	help := m.renderContextualHelp()

	spacerWidth := width - lipgloss.Width(statusText) - lipgloss.Width(help)
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		strings.Repeat(" ", spacerWidth),
		help,
	)
}

// renderContextualHelp returns help text for the active tab.
func (m Model) renderContextualHelp() string {
	var help string
	switch {
	case m.activeList().FilterState() == list.Filtering:
		help = "enter: apply filter • esc: cancel"
	case m.activeTab == TabSessions:
		help = "enter: switch • x: kill • /: filter • r: refresh • tab: projects • q: quit"
	default:
		help = "enter: open • i: ignore • /: filter • r: rescan • tab: sessions • q: quit"
	}
	return m.styles.HelpStyle().Render(help)
}
