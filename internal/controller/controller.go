package controller

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/hotfix-tui/internal/projection"
)

// HotfixView exposes the table actions of the hotfix view.
type HotfixView interface {
	Search(term string)
	ToggleFilter(col projection.Column, value string, selected bool) bool
	Sort(col projection.Column)
	ClearAll()
	ToggleExpand(ordinal int) bool
	OpenDetail(ordinal int) bool
	CloseDetail()
}

// NodeSelector switches the inspected node.
type NodeSelector interface {
	SelectNode(id string) tea.Cmd
}

// AlertManager drives the alert and history planes.
type AlertManager interface {
	DismissAlert(id int)
	PauseAlert(id int)
	ResumeAlert(id int) tea.Cmd
	ActivateAlert(id int) bool
	OpenPanel()
	ClosePanel()
	ClearHistory()
}

// Loader starts or restarts the session fetches.
type Loader interface {
	Load() tea.Cmd
	Reload() tea.Cmd
}

// SettingsManager persists preferences changed from inside the UI.
type SettingsManager interface {
	SetTheme(name string) (string, error)
}

// Controller is everything the root model drives. Update consumes the
// messages produced by the controller's own commands.
type Controller interface {
	Loader
	HotfixView
	NodeSelector
	AlertManager
	Update(msg tea.Msg) (cmd tea.Cmd, handled bool)
}
