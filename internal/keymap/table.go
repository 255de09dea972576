package keymap

import "github.com/charmbracelet/bubbles/key"

// Table holds the bindings of list-style views.
type Table struct {
	Up     key.Binding
	Down   key.Binding
	PageUp key.Binding
	PageDn key.Binding
	Home   key.Binding
	End    key.Binding
	Select key.Binding
	Expand key.Binding
	Search key.Binding
	Filter key.Binding
	Sort   key.Binding
	Clear  key.Binding
	Cancel key.Binding
	Delete key.Binding
}

// DefaultTable returns the list bindings.
func DefaultTable() Table {
	return Table{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDn: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		End:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Expand: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "expand")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Sort:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "sort")),
		Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Delete: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "dismiss")),
	}
}
