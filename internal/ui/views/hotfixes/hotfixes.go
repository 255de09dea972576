package hotfixes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/keymap"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/components/table"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
)

const (
	defaultTableRows = 10
	minTableRows     = 3
	tableChrome      = 8
	columnGap        = 1
)

var columns = []table.Column{
	{Title: "", Min: 2},
	{Title: "STATUS", Min: 13},
	{Title: "NAME", Min: 16, Grow: 3},
	{Title: "SEVERITY", Min: 11},
	{Title: "TYPE", Min: 12},
	{Title: "RELEASED", Min: 10, Grow: 1},
	{Title: "IMPACTED AREA", Min: 12, Grow: 2},
	{Title: "REQUIRED ACTIONS", Min: 14, Grow: 2},
}

// Model renders the reconciled hotfix table of the selected node.
type Model struct {
	store   *state.Store
	theme   theme.Theme
	actions controller.HotfixView
	keys    keymap.Table

	width  int
	height int

	mode     mode
	search   textinput.Model
	rowIdx   int
	offset   int
	facetIdx int
}

// New constructs the hotfix view.
func New(store *state.Store, th theme.Theme, actions controller.HotfixView) view.Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search hotfixes"
	search.CharLimit = 128
	return &Model{store: store, theme: th, actions: actions, keys: keymap.DefaultTable(), search: search}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Hotfixes" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(10, m.contentWidth()-4)
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

// Capturing reports whether the search box or filter panel owns the keyboard.
func (m *Model) Capturing() bool { return m.mode != modeBrowse }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	snapshot := m.store.Snapshot()
	rows := snapshot.Table.Rows
	m.rowIdx = util.ClampIndex(m.rowIdx, len(rows))
	// Node switches and reloads clear the table's search.
	if m.mode != modeSearch && snapshot.Table.Search == "" && m.search.Value() != "" {
		m.search.SetValue("")
	}

	switch m.mode {
	case modeSearch:
		return m, m.updateSearch(keyMsg)
	case modeFilter:
		m.updateFilter(keyMsg, snapshot.Table.Facets)
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.rowIdx = max(0, m.rowIdx-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.rowIdx = util.ClampIndex(m.rowIdx+1, len(rows))
	case key.Matches(keyMsg, m.keys.PageUp):
		m.rowIdx = max(0, m.rowIdx-m.tableCapacity())
	case key.Matches(keyMsg, m.keys.PageDn):
		m.rowIdx = util.ClampIndex(m.rowIdx+m.tableCapacity(), len(rows))
	case key.Matches(keyMsg, m.keys.Home):
		m.rowIdx = 0
	case key.Matches(keyMsg, m.keys.End):
		m.rowIdx = max(0, len(rows)-1)
	case key.Matches(keyMsg, m.keys.Expand):
		if len(rows) > 0 && m.actions != nil {
			m.actions.ToggleExpand(rows[m.rowIdx].Ordinal)
		}
	case key.Matches(keyMsg, m.keys.Select):
		if len(rows) > 0 && m.actions != nil {
			m.actions.OpenDetail(rows[m.rowIdx].Ordinal)
		}
	case key.Matches(keyMsg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(keyMsg, m.keys.Filter):
		if len(snapshot.Table.Facets) > 0 {
			m.mode = modeFilter
		}
	case key.Matches(keyMsg, m.keys.Sort):
		idx := int(keyMsg.String()[0] - '1')
		if idx >= 0 && idx < len(projection.DisplayColumns) && m.actions != nil {
			m.actions.Sort(projection.DisplayColumns[idx])
		}
	case key.Matches(keyMsg, m.keys.Clear):
		m.search.SetValue("")
		m.rowIdx = 0
		if m.actions != nil {
			m.actions.ClearAll()
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Select):
		m.mode = modeBrowse
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before && m.actions != nil {
		m.rowIdx = 0
		m.actions.Search(value)
	}
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg, facets []projection.Facet) {
	options := flatten(facets)
	if len(options) == 0 {
		m.mode = modeBrowse
		return
	}
	m.facetIdx = util.ClampIndex(m.facetIdx, len(options))
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Filter):
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Up):
		m.facetIdx = util.WrapIndex(m.facetIdx, -1, len(options))
	case key.Matches(msg, m.keys.Down):
		m.facetIdx = util.WrapIndex(m.facetIdx, 1, len(options))
	case key.Matches(msg, m.keys.Expand), key.Matches(msg, m.keys.Select):
		opt := options[m.facetIdx]
		if m.actions != nil {
			m.actions.ToggleFilter(opt.column, opt.value, !opt.selected)
			m.search.SetValue("")
			m.rowIdx = 0
		}
	}
}

type option struct {
	column   projection.Column
	value    string
	selected bool
}

func flatten(facets []projection.Facet) []option {
	var out []option
	for _, f := range facets {
		for _, c := range f.Candidates {
			out = append(out, option{column: f.Column, value: c.Value, selected: c.Selected})
		}
	}
	return out
}

func (m *Model) View() string {
	snapshot := m.store.Snapshot()
	switch {
	case snapshot.AuthRequired:
		return m.wrap(m.theme.Danger.Render("The backend rejected the session. Sign in again and press ctrl+r to reload."))
	case snapshot.Loading.Busy():
		msg := "Loading hotfix catalog and node data..."
		if snapshot.LastError != "" {
			msg += "\n" + m.theme.Danger.Render(snapshot.LastError)
		}
		return m.wrap(m.theme.Subtle.Render(msg))
	}

	parts := []string{m.renderSummary(snapshot)}
	if m.mode == modeSearch || snapshot.Table.Search != "" {
		parts = append(parts, m.search.View())
	}
	if m.mode == modeFilter {
		parts = append(parts, m.renderFilterPanel(snapshot.Table.Facets))
	} else {
		parts = append(parts, m.renderTable(snapshot.Table))
	}
	parts = append(parts, m.renderStatus())
	return m.wrap(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) renderSummary(snapshot state.Snapshot) string {
	node := util.DisplayName(snapshot.Selected)
	line := fmt.Sprintf("%s · %s · %s · showing %d of %d",
		util.Fallback(node, "-"),
		util.Fallback(snapshot.NodeData.Role, "-"),
		util.Fallback(snapshot.NodeData.Status, "-"),
		len(snapshot.Table.Rows), snapshot.Table.Total,
	)
	var flags []string
	if snapshot.Table.Filtering {
		flags = append(flags, "filtered")
	}
	if snapshot.Table.Search != "" {
		flags = append(flags, fmt.Sprintf("search %q", snapshot.Table.Search))
	}
	if snapshot.Table.SortDir != projection.SortNone {
		flags = append(flags, fmt.Sprintf("sort %s %s", snapshot.Table.SortBy, snapshot.Table.SortDir))
	}
	if len(flags) > 0 {
		line += " · " + strings.Join(flags, " · ")
	}
	return m.theme.Title.Render(line)
}

func (m *Model) renderTable(tbl state.Table) string {
	if len(tbl.Rows) == 0 {
		if tbl.Total == 0 {
			return m.theme.Subtle.Render("No hotfixes apply to this node.")
		}
		return m.theme.Subtle.Render("No hotfixes match. Press c to clear.")
	}

	widths := table.Layout(columns, m.contentWidth(), columnGap)
	gap := strings.Repeat(" ", columnGap)
	headerCols := make([]table.Column, len(columns))
	copy(headerCols, columns)
	for i, col := range projection.DisplayColumns {
		if col == tbl.SortBy && tbl.SortDir != projection.SortNone {
			arrow := "▲"
			if tbl.SortDir == projection.SortDescending {
				arrow = "▼"
			}
			headerCols[i+1].Title += " " + arrow
		}
	}

	lines := []string{table.Header(headerCols, widths, gap, m.theme.Header.Bold(true).Padding(0))}
	start, end := table.Window(m.rowIdx, m.offset, m.tableCapacity(), len(tbl.Rows))
	m.offset = start
	for idx := start; idx < end; idx++ {
		rec := tbl.Rows[idx]
		lines = append(lines, m.renderRow(rec, widths, gap, idx == m.rowIdx))
		if rec.Expanded {
			lines = append(lines, m.renderExpanded(rec))
		}
	}
	if end < len(tbl.Rows) {
		lines = append(lines, table.RenderCaretRow(m.contentWidth(), m.theme.Subtle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderRow(rec hotfix.Record, widths []int, gap string, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	cells := []string{cursor}
	for _, col := range projection.DisplayColumns {
		cells = append(cells, util.Fallback(projection.SortKey(col, rec), "-"))
	}
	style := m.toneStyle(hotfix.RowTone(rec))
	if selected {
		style = style.Inherit(m.theme.Selected)
	}
	return table.Row(cells, widths, gap, style)
}

func (m *Model) renderExpanded(rec hotfix.Record) string {
	inner := max(20, m.contentWidth()-4)
	fmtLine := func(label, value string) string {
		return util.TruncateString(fmt.Sprintf("%s: %s", label, value), inner)
	}
	lines := []string{
		fmtLine("Summary", util.Fallback(rec.Summary, "-")),
		fmtLine("Fixes", rec.Fixes.Summary()),
		fmtLine("Ticket", util.Fallback(rec.TicketID, "-")),
		fmtLine("Applied", util.Fallback(rec.ApplyTimestamp, "-")),
		fmtLine("Revert", util.Fallback(rec.RevertName(), "-")),
		fmtLine("Releases", util.Fallback(strings.Join(rec.CompatibleReleases, ", "), "-")),
	}
	return m.theme.Subtle.PaddingLeft(4).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFilterPanel(facets []projection.Facet) string {
	lines := []string{m.theme.Title.Render("Filters")}
	idx := 0
	for _, f := range facets {
		if len(f.Candidates) == 0 {
			continue
		}
		lines = append(lines, m.theme.Header.Padding(0).Render(columnTitle(f.Column)))
		for _, c := range f.Candidates {
			box := "[ ]"
			if c.Selected {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %s", box, c.Value)
			if idx == m.facetIdx {
				line = m.theme.Selected.Render(line)
			}
			lines = append(lines, line)
			idx++
		}
	}
	return strings.Join(lines, "\n")
}

func columnTitle(col projection.Column) string {
	for i, c := range projection.DisplayColumns {
		if c == col {
			return columns[i+1].Title
		}
	}
	return string(col)
}

func (m *Model) toneStyle(tone hotfix.Tone) lipgloss.Style {
	switch tone {
	case hotfix.ToneInstalled:
		return m.theme.Success.UnsetBold()
	case hotfix.ToneImportantNotInstalled:
		return m.theme.Danger.UnsetBold()
	case hotfix.ToneRecommendedNotInstalled:
		return m.theme.Warning.UnsetBold()
	default:
		return lipgloss.NewStyle()
	}
}

func (m *Model) renderStatus() string {
	switch m.mode {
	case modeSearch:
		return m.theme.Subtle.Render("type to search · enter/esc done")
	case modeFilter:
		return m.theme.Subtle.Render("↑/↓ move · space toggle · f/esc done")
	}
	return m.theme.Subtle.Render("↑/↓ rows · space expand · enter detail · / search · f filter · 1-7 sort · c clear")
}

func (m *Model) wrap(body string) string {
	return m.theme.Body.Width(max(1, m.width)).Height(max(5, m.height)).Render(body)
}

func (m *Model) tableCapacity() int {
	if m.height <= 0 {
		return defaultTableRows
	}
	return max(minTableRows, m.height-tableChrome)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 120
	}
	if m.width <= 4 {
		return m.width
	}
	return m.width - 4
}
