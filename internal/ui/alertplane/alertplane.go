// Package alertplane renders visible hotfix alerts as a stack of toasts.
// A focused toast is held on screen until focus moves away.
package alertplane

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
)

const maxToasts = 4

// Model tracks which toast has keyboard focus.
type Model struct {
	store   *state.Store
	theme   theme.Theme
	actions controller.AlertManager
	focused int
}

// New constructs the alert plane.
func New(store *state.Store, th theme.Theme, actions controller.AlertManager) *Model {
	return &Model{store: store, theme: th, actions: actions}
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

// Focused returns the id of the focused alert, or zero.
func (m *Model) Focused() int {
	if m.focused != 0 && m.find(m.focused) == nil {
		m.focused = 0
	}
	return m.focused
}

// Cycle moves focus to the next visible alert, pausing it and resuming the
// one that lost focus. Focus wraps back to none after the last alert.
func (m *Model) Cycle() tea.Cmd {
	alerts := m.visible()
	if len(alerts) == 0 {
		return m.Blur()
	}
	next := alerts[0].ID
	for i, alert := range alerts {
		if alert.ID == m.Focused() {
			if i+1 >= len(alerts) {
				return m.Blur()
			}
			next = alerts[i+1].ID
		}
	}
	cmd := m.Blur()
	m.focused = next
	if m.actions != nil {
		m.actions.PauseAlert(next)
	}
	return cmd
}

// Blur releases focus and resumes the previously focused alert.
func (m *Model) Blur() tea.Cmd {
	id := m.Focused()
	m.focused = 0
	if id == 0 || m.actions == nil {
		return nil
	}
	return m.actions.ResumeAlert(id)
}

// Update handles keys aimed at the focused toast. handled is false when no
// toast has focus.
func (m *Model) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	id := m.Focused()
	if !ok || id == 0 {
		return nil, false
	}
	switch keyMsg.String() {
	case "enter":
		m.focused = 0
		if m.actions != nil {
			m.actions.ActivateAlert(id)
		}
		return nil, true
	case "x", "delete":
		m.focused = 0
		if m.actions != nil {
			m.actions.DismissAlert(id)
		}
		return nil, true
	case "esc":
		return m.Blur(), true
	}
	return nil, false
}

func (m *Model) visible() []notify.Alert {
	return m.store.Snapshot().Notifications.Alerts
}

func (m *Model) find(id int) *notify.Alert {
	alerts := m.visible()
	for i := range alerts {
		if alerts[i].ID == id {
			return &alerts[i]
		}
	}
	return nil
}

// View renders the newest toasts, or "" when the plane is empty.
func (m *Model) View() string {
	alerts := m.visible()
	if len(alerts) == 0 {
		return ""
	}
	focused := m.Focused()
	start := max(0, len(alerts)-maxToasts)
	toasts := make([]string, 0, maxToasts+1)
	for _, alert := range alerts[start:] {
		toasts = append(toasts, m.renderToast(alert, alert.ID == focused))
	}
	if start > 0 {
		toasts = append(toasts, m.theme.Subtle.Render(fmt.Sprintf("+%d more", start)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

func (m *Model) renderToast(alert notify.Alert, focused bool) string {
	style := m.theme.Alert.Copy()
	title := m.theme.Warning
	if alert.Event.Type == string(catalog.SeverityImportant) {
		style = style.BorderForeground(m.theme.Danger.GetForeground())
		title = m.theme.Danger
	}
	name := ""
	if alert.Event.Payload != nil {
		name = alert.Event.Payload.Name
	}
	lines := []string{
		title.Render(alert.Event.Title) + " " + m.theme.Subtle.Render(alert.Event.Tag),
		name,
		alert.Event.Body,
	}
	if focused {
		style = style.BorderStyle(lipgloss.ThickBorder())
		lines = append(lines, m.theme.Subtle.Render("paused · enter details · x dismiss · esc release"))
	}
	return style.Render(strings.Join(lines, "\n"))
}
