package nodes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/keymap"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/components/table"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

var columns = []table.Column{
	{Title: "", Min: 2},
	{Title: "HOSTNAME", Min: 18, Grow: 3},
	{Title: "IP", Min: 15, Grow: 1},
	{Title: "ROLE", Min: 7},
	{Title: "STATUS", Min: 8},
	{Title: "HA", Min: 4},
	{Title: "CANDIDATE", Min: 9},
}

// Model renders the managed node roster and switches the inspected node.
type Model struct {
	store    *state.Store
	theme    theme.Theme
	selector controller.NodeSelector
	keys     keymap.Table

	width  int
	height int

	searching bool
	search    textinput.Model
	rowIdx    int
	offset    int
}

// New constructs the nodes view.
func New(store *state.Store, th theme.Theme, selector controller.NodeSelector) view.Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "hostname, ip or id"
	search.CharLimit = 64
	return &Model{store: store, theme: th, selector: selector, keys: keymap.DefaultTable(), search: search}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Nodes" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
}

// Capturing reports whether the search box is focused.
func (m *Model) Capturing() bool { return m.searching }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel), key.Matches(keyMsg, m.keys.Select):
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(keyMsg)
		m.rowIdx = 0
		return m, cmd
	}

	nodes := m.visible()
	m.rowIdx = util.ClampIndex(m.rowIdx, len(nodes))
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.rowIdx = max(0, m.rowIdx-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.rowIdx = util.ClampIndex(m.rowIdx+1, len(nodes))
	case key.Matches(keyMsg, m.keys.Home):
		m.rowIdx = 0
	case key.Matches(keyMsg, m.keys.End):
		m.rowIdx = max(0, len(nodes)-1)
	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(keyMsg, m.keys.Clear):
		m.search.SetValue("")
	case key.Matches(keyMsg, m.keys.Select):
		if len(nodes) > 0 && m.selector != nil {
			return m, m.selector.SelectNode(nodes[m.rowIdx].ID)
		}
	}
	return m, nil
}

func (m *Model) visible() []inventory.Node {
	return projection.MatchNodes(m.store.Snapshot().Roster, m.search.Value())
}

func (m *Model) View() string {
	snapshot := m.store.Snapshot()

	if len(snapshot.Roster) == 0 {
		msg := "No nodes reported by the backend."
		if snapshot.Loading.Busy() {
			msg = "Loading node roster..."
		}
		return m.theme.Body.Width(max(1, m.width)).Height(max(3, m.height)).Render(m.theme.Subtle.Render(msg))
	}

	nodes := projection.MatchNodes(snapshot.Roster, m.search.Value())
	m.rowIdx = util.ClampIndex(m.rowIdx, len(nodes))
	width := max(40, m.width-4)
	widths := table.Layout(columns, width, 1)

	lines := []string{m.theme.Title.Render(fmt.Sprintf("%d of %d nodes", len(nodes), len(snapshot.Roster)))}
	if m.searching || m.search.Value() != "" {
		lines = append(lines, m.search.View())
	}
	lines = append(lines, table.Header(columns, widths, " ", m.theme.Header.Bold(true).Padding(0)))
	capacity := max(3, m.height-8)
	start, end := table.Window(m.rowIdx, m.offset, capacity, len(nodes))
	m.offset = start
	for idx := start; idx < end; idx++ {
		lines = append(lines, m.renderRow(nodes[idx], widths, idx == m.rowIdx, nodes[idx].ID == snapshot.Selected.ID))
	}
	if end < len(nodes) {
		lines = append(lines, table.RenderCaretRow(width, m.theme.Subtle))
	}
	if len(nodes) == 0 {
		lines = append(lines, m.theme.Subtle.Render("No nodes match."))
	}
	lines = append(lines, m.theme.Subtle.Render("↑/↓ move · enter inspect · / search · c clear"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.theme.Body.Width(max(1, m.width)).Height(max(3, m.height)).Render(content)
}

func (m *Model) renderRow(node inventory.Node, widths []int, cursor, active bool) string {
	marker := " "
	switch {
	case cursor:
		marker = ">"
	case active:
		marker = "*"
	}
	cells := []string{
		marker,
		util.DisplayName(node),
		util.Fallback(node.IP, "-"),
		util.Fallback(node.Role, "-"),
		util.Fallback(strings.ToUpper(node.Status), "-"),
		yesNo(node.HAEnabled),
		yesNo(node.MasterCandidate),
	}
	style := m.statusStyle(node.Status)
	if cursor {
		style = style.Inherit(m.theme.Selected)
	}
	return table.Row(cells, widths, " ", style)
}

func (m *Model) statusStyle(status string) lipgloss.Style {
	switch strings.ToUpper(status) {
	case inventory.StatusOnline:
		return m.theme.Success.UnsetBold()
	case inventory.StatusOffline:
		return m.theme.Danger.UnsetBold()
	default:
		return m.theme.Subtle
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
