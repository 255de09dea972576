package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/hotfix-tui/internal/theme"
)

// Model represents a routed Bubble Tea view.
type Model interface {
	tea.Model
	SetSize(width, height int)
	SetTheme(theme theme.Theme)
	Title() string
}

// Capturer is implemented by views that hold keyboard focus, such as an open
// search box, and want every key before the router's global bindings.
type Capturer interface {
	Capturing() bool
}

// Focuser is implemented by views that react to becoming active or inactive.
type Focuser interface {
	Focus() tea.Cmd
	Blur()
}
