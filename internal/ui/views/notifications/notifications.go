package notifications

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/keymap"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

// Model renders the notification history of the inspected node. Showing the
// view opens the history panel, which clears the alert plane.
type Model struct {
	store   *state.Store
	theme   theme.Theme
	actions controller.AlertManager
	keys    keymap.Table
	width   int
	height  int
	rowIdx  int
}

// New constructs the notifications view backed by the shared store.
func New(store *state.Store, th theme.Theme, actions controller.AlertManager) view.Model {
	return &Model{store: store, theme: th, actions: actions, keys: keymap.DefaultTable()}
}

func (m *Model) Init() tea.Cmd { return nil }

// Focus opens the history panel.
func (m *Model) Focus() tea.Cmd {
	if m.actions != nil {
		m.actions.OpenPanel()
	}
	return nil
}

// Blur closes the history panel.
func (m *Model) Blur() {
	if m.actions != nil {
		m.actions.ClosePanel()
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	history := m.store.Snapshot().Notifications.History
	m.rowIdx = util.ClampIndex(m.rowIdx, len(history))
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.rowIdx = max(0, m.rowIdx-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.rowIdx = util.ClampIndex(m.rowIdx+1, len(history))
	case key.Matches(keyMsg, m.keys.Select):
		if len(history) > 0 && m.actions != nil {
			m.actions.ActivateAlert(history[m.rowIdx].ID)
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if len(history) > 0 && m.actions != nil {
			m.actions.DismissAlert(history[m.rowIdx].ID)
		}
	case key.Matches(keyMsg, m.keys.Clear):
		if m.actions != nil {
			m.actions.ClearHistory()
		}
		m.rowIdx = 0
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	history := m.store.Snapshot().Notifications.History
	if len(history) == 0 {
		msg := m.theme.Subtle.Render("No notifications yet. Alerts for missing hotfixes will appear here.")
		return m.theme.Body.Copy().Width(m.width).Height(max(3, m.height)).Render(msg)
	}
	m.rowIdx = util.ClampIndex(m.rowIdx, len(history))

	rows := make([]string, 0, len(history)+1)
	rows = append(rows, m.theme.Title.Render(fmt.Sprintf("%d notifications", len(history))))
	limit := len(history)
	if m.height > 6 {
		// each card takes four lines
		limit = min(limit, max(1, (m.height-4)/4))
	}
	start := 0
	if m.rowIdx >= limit {
		start = m.rowIdx - limit + 1
	}
	for idx := start; idx < start+limit && idx < len(history); idx++ {
		rows = append(rows, m.renderAlert(history[idx], idx == m.rowIdx))
	}
	rows = append(rows, m.theme.Subtle.Render("↑/↓ move · enter details · x dismiss · c clear all"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return m.theme.Body.Copy().Width(m.width).Height(max(3, m.height)).Render(content)
}

func (m *Model) Title() string { return "Notifications" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
}

func (m *Model) renderAlert(alert notify.Alert, selected bool) string {
	name := "-"
	if alert.Event.Payload != nil {
		name = alert.Event.Payload.Name
	}
	left := fmt.Sprintf("[%s] %s · %s", strings.ToUpper(alert.Event.Type), alert.Event.Title, name)
	meta := []string{util.Fallback(alert.Event.Tag, "unknown node"), util.RelativeTime(alert.Raised)}
	title := m.theme.Title.Copy()
	if selected {
		title = title.Inherit(m.theme.Selected)
		left = "> " + left
	}
	line := lipgloss.JoinVertical(lipgloss.Left,
		title.Render(util.TruncateString(left, max(10, m.width-10))),
		util.TruncateString(alert.Event.Body, max(10, m.width-10)),
		m.theme.Subtle.Render(strings.Join(meta, " · ")),
	)
	return m.theme.Card.Copy().Width(max(20, m.width-8)).Render(line)
}
