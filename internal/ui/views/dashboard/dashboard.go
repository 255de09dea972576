package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

// Model renders the per-severity install summary of the selected node.
type Model struct {
	store  *state.Store
	theme  theme.Theme
	width  int
	height int
}

// New creates a dashboard view backed by the provided store.
func New(store *state.Store, th theme.Theme) view.Model {
	return &Model{store: store, theme: th}
}

// Init satisfies tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update satisfies tea.Model. The dashboard only reacts to store updates.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the dashboard contents.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	snapshot := m.store.Snapshot()

	var cards []string
	for _, sev := range snapshot.Counters.Severities() {
		cards = append(cards, m.renderSeverity(sev, snapshot.Counters[sev]))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	secondary := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderNode(snapshot, m.width/2),
		m.renderCatalog(snapshot, m.width/2),
	)
	meta := m.theme.Subtle.Render(m.metaLine(snapshot))
	body := lipgloss.JoinVertical(lipgloss.Left, row, secondary, meta)

	return m.theme.Body.Copy().Width(m.width).Height(max(3, m.height)).Render(body)
}

// Title returns the tab label for this view.
func (m *Model) Title() string { return "Dashboard" }

// SetSize updates the view's drawing bounds.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetTheme updates the active palette.
func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
}

func (m *Model) renderSeverity(sev catalog.Severity, count hotfix.Count) string {
	const cardOverhead = 8 // border (2) + padding (4) + margin (2)
	cardWidth := max(22, (m.width-4)/3-cardOverhead)
	style := m.severityStyle(sev)
	barWidth := max(6, cardWidth-12)
	missing := count.Available - count.Installed
	lines := []string{
		style.Render(string(sev)),
		fmt.Sprintf("%d / %d installed", count.Installed, count.Available),
		fmt.Sprintf("%s %3d%%", m.theme.Success.Render(renderRelativeBar(count.Installed, count.Available, barWidth)), percent(count.Installed, count.Available)),
	}
	if missing > 0 {
		lines = append(lines, style.Render(fmt.Sprintf("%d pending", missing)))
	} else {
		lines = append(lines, m.theme.Subtle.Render("up to date"))
	}
	return m.theme.Card.Copy().Width(cardWidth).Render(strings.Join(lines, "\n"))
}

func (m *Model) severityStyle(sev catalog.Severity) lipgloss.Style {
	switch sev {
	case catalog.SeverityImportant:
		return m.theme.Danger
	case catalog.SeverityRecommended:
		return m.theme.Warning
	default:
		return m.theme.Title
	}
}

func (m *Model) renderNode(snapshot state.Snapshot, width int) string {
	cardWidth := max(24, width-8)
	head := m.theme.Title.Render("Node")
	node := snapshot.Selected
	if node.ID == "" {
		return m.theme.Card.Copy().Width(cardWidth).Render(head + "\n" + m.theme.Subtle.Render("No node selected"))
	}
	status := util.Fallback(snapshot.NodeData.Status, node.Status)
	statusStyle := m.theme.Success
	if status != "ONLINE" {
		statusStyle = m.theme.Danger
	}
	lines := []string{
		head,
		"Host    " + util.DisplayName(node),
		"IP      " + util.Fallback(node.IP, "-"),
		"Role    " + util.Fallback(util.Fallback(snapshot.NodeData.Role, node.Role), "-"),
		"Status  " + statusStyle.Render(util.Fallback(status, "-")),
		"HA      " + yesNo(node.HAEnabled),
		"Master  " + yesNo(node.MasterCandidate) + " candidate",
	}
	return m.theme.Card.Copy().Width(cardWidth).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderCatalog(snapshot state.Snapshot, width int) string {
	cardWidth := max(24, width-8)
	head := m.theme.Title.Render("Catalog")
	if snapshot.Loading.Catalog {
		return m.theme.Card.Copy().Width(cardWidth).Render(head + "\n" + m.theme.Subtle.Render("Waiting for catalog"))
	}
	lines := []string{
		head,
		fmt.Sprintf("Version    %g", snapshot.Metadata.Version),
		"Generated  " + util.Fallback(snapshot.Metadata.Generated, "-"),
		fmt.Sprintf("Applicable %d", snapshot.Table.Total),
		fmt.Sprintf("Nodes      %d", len(snapshot.Roster)),
	}
	return m.theme.Card.Copy().Width(cardWidth).Render(strings.Join(lines, "\n"))
}

func (m *Model) metaLine(snapshot state.Snapshot) string {
	switch {
	case snapshot.AuthRequired:
		return "Session expired · press ctrl+r after signing in"
	case snapshot.LastError != "":
		return "Error: " + snapshot.LastError
	case snapshot.Loading.Busy():
		return "Loading catalog and node data"
	}
	return fmt.Sprintf("%d hotfixes need attention · %d alerts pending", attention(snapshot.Counters), snapshot.Notifications.Pending)
}

func attention(c hotfix.Counters) int {
	total := 0
	for _, count := range c {
		total += max(0, count.Available-count.Installed)
	}
	return total
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func percent(value, total int) int {
	if total <= 0 {
		return 0
	}
	return min(100, (value*100+total/2)/total)
}

func renderRelativeBar(value, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := filledWidth(value, total, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// filledWidth clamps at width because the installed counter can exceed the
// available counter when a node reports several successful installs.
func filledWidth(value, total, width int) int {
	if width <= 0 || value <= 0 {
		return 0
	}
	if total <= 0 {
		return width
	}
	filled := (value*width + total/2) / total
	if filled == 0 {
		filled = 1
	}
	return min(filled, width)
}
