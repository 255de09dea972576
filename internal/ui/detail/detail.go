// Package detail renders the hotfix detail overlay opened from the table or
// from an activated alert.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

// Closer closes the detail overlay.
type Closer interface {
	CloseDetail()
}

// Model is the detail overlay. It is active while the store holds a detail.
type Model struct {
	store  *state.Store
	theme  theme.Theme
	closer Closer

	width  int
	height int
	vp     viewport.Model
	shown  string
}

// New constructs the overlay.
func New(store *state.Store, th theme.Theme, closer Closer) *Model {
	return &Model{store: store, theme: th, closer: closer, vp: viewport.New(40, 10)}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.shown = ""
}

func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
	m.shown = ""
}

// Active reports whether a detail is open.
func (m *Model) Active() bool {
	return m.store.Snapshot().Detail != nil
}

// Update handles keys while the overlay is open. handled is false when the
// overlay is closed or the key belongs to the router.
func (m *Model) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.Active() {
		return nil, false
	}
	switch keyMsg.String() {
	case "esc", "q", "enter":
		if m.closer != nil {
			m.closer.CloseDetail()
		}
		m.shown = ""
		return nil, true
	case "ctrl+c":
		return nil, false
	case "up", "k":
		m.vp.LineUp(1)
	case "down", "j":
		m.vp.LineDown(1)
	case "pgup":
		m.vp.HalfViewUp()
	case "pgdown", " ":
		m.vp.HalfViewDown()
	case "home", "g":
		m.vp.GotoTop()
	case "end", "G":
		m.vp.GotoBottom()
	}
	return nil, true
}

func (m *Model) View() string {
	d := m.store.Snapshot().Detail
	if d == nil {
		return ""
	}
	cardW, innerW, innerH := m.dimensions()
	key := fmt.Sprintf("%d/%s/%d", d.Record.Ordinal, d.Record.ApplyStatus, len(d.Nodes))
	if m.vp.Width != innerW || m.vp.Height != innerH || m.shown != key {
		m.vp.Width = innerW
		m.vp.Height = innerH
		m.vp.SetContent(lipgloss.NewStyle().Width(innerW).Render(m.content(*d)))
		if m.shown != key {
			m.vp.GotoTop()
		}
		m.shown = key
	}

	header := m.theme.Header.Render(fmt.Sprintf("Hotfix · %s", d.Record.Name))
	footer := m.theme.Subtle.Render(fmt.Sprintf("[esc] close · scroll ↑/↓ · %d%%", int(m.vp.ScrollPercent()*100)))
	body := lipgloss.JoinVertical(lipgloss.Left, header, m.vp.View(), footer)
	card := m.theme.Modal.Width(cardW)
	return lipgloss.Place(max(1, m.width), max(1, m.height), lipgloss.Center, lipgloss.Top, card.Render(body))
}

func (m *Model) dimensions() (cardWidth, innerWidth, innerHeight int) {
	maxCardWidth := min(m.width-2, 100)
	frameW, frameH := m.theme.Modal.GetFrameSize()
	cardWidth = max(frameW+20, maxCardWidth)
	innerWidth = cardWidth - frameW
	innerHeight = max(3, m.height-frameH-2)
	return
}

func (m *Model) content(d state.Detail) string {
	rec := d.Record
	labelStyle := m.theme.Title.Copy().PaddingRight(0)
	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-18s", label)) + util.Fallback(value, "-")
	}
	lines := []string{
		field("Status", m.statusLabel(rec)),
		field("Applied", rec.ApplyTimestamp),
		field("Severity", string(rec.Severity)),
		field("Type", rec.Type),
		field("Released", rec.Released),
		field("Ticket", rec.TicketID),
		field("Compatible node", rec.CompatibleNode),
		field("Releases", strings.Join(rec.CompatibleReleases, ", ")),
		field("Impacted area", strings.Join(rec.ImpactedArea, ", ")),
		field("Required actions", rec.RequiredActions.Label(string(hotfix.StatusNotAvailable))),
		field("Fixes", rec.Fixes.Summary()),
		field("SHA256", rec.SHA256),
		field("Revert", rec.RevertName()),
	}
	if len(rec.Incompatible) > 0 {
		lines = append(lines, field("Incompatible", strings.Join(rec.Incompatible, ", ")))
	}
	lines = append(lines, "", m.theme.Title.Render("Summary"), util.Fallback(rec.Summary, "-"))

	lines = append(lines, fixSection(m.theme.Title.Render("Bugfixes"), rec.Fixes.Bugfixes)...)
	lines = append(lines, fixSection(m.theme.Title.Render("CVE fixes"), rec.Fixes.CVEFixes)...)
	lines = append(lines, fixSection(m.theme.Title.Render("Security fixes"), rec.Fixes.SecurityFixes)...)

	if len(rec.References) > 0 {
		lines = append(lines, "", m.theme.Title.Render("References"))
		for _, ref := range rec.References {
			lines = append(lines, fmt.Sprintf("  %s  %s", util.Fallback(ref.Type, "link"), ref.Link))
		}
	}

	lines = append(lines, "", m.theme.Title.Render(fmt.Sprintf("Compatible nodes (%d)", len(d.Nodes))))
	if len(d.Nodes) == 0 {
		lines = append(lines, m.theme.Subtle.Render("  none in the roster"))
	}
	for _, node := range d.Nodes {
		lines = append(lines, fmt.Sprintf("  %s  %s  %s  %s", util.DisplayName(node), util.Fallback(node.IP, "-"), node.Role, node.Status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusLabel(rec hotfix.Record) string {
	label := string(rec.ApplyStatus)
	switch hotfix.RowTone(rec) {
	case hotfix.ToneInstalled:
		return m.theme.Success.Render(label)
	case hotfix.ToneImportantNotInstalled:
		return m.theme.Danger.Render(label)
	case hotfix.ToneRecommendedNotInstalled:
		return m.theme.Warning.Render(label)
	}
	return label
}

func fixSection(title string, fixes []catalog.Fix) []string {
	if len(fixes) == 0 {
		return nil
	}
	out := []string{"", title}
	for _, fix := range fixes {
		line := fmt.Sprintf("  %s  %s", fix.ID, fix.Summary)
		if fix.Ref != "" {
			line += " (" + fix.Ref + ")"
		}
		out = append(out, line)
	}
	return out
}
