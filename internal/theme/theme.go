package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode controls the global color palette selection.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// Options configure the active theme at runtime.
type Options struct {
	Override  string
	Preferred string
}

// Theme exposes reusable lipgloss styles for the UI.
type Theme struct {
	Mode        Mode
	Title       lipgloss.Style
	Header      lipgloss.Style
	Footer      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Body        lipgloss.Style
	Card        lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Danger      lipgloss.Style
	Subtle      lipgloss.Style
	Selected    lipgloss.Style
	// Alert frames a toast on the alert plane.
	Alert lipgloss.Style
	// Modal frames the detail overlay.
	Modal  lipgloss.Style
	Banner lipgloss.Style
}

// New constructs a theme based on the provided preferences.
func New(opts Options) Theme {
	mode := selectMode(opts.Override, opts.Preferred)
	if mode == ModeLight {
		return buildLight(mode)
	}
	return buildDark(mode)
}

// Toggle returns the mode that follows m when the user flips the palette.
func Toggle(m Mode) Mode {
	if m == ModeLight {
		return ModeDark
	}
	return ModeLight
}

// RenderTab prints a tab label using the appropriate style.
func (t Theme) RenderTab(label string, active bool) string {
	style := t.TabInactive
	if active {
		style = t.TabActive
	}
	return style.Render(label)
}

func selectMode(override, preferred string) Mode {
	if mode := parseMode(override); mode != "" {
		return applyAuto(mode)
	}
	if mode := parseMode(preferred); mode != "" {
		return applyAuto(mode)
	}
	return ModeDark
}

func parseMode(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeDark):
		return ModeDark
	case string(ModeLight):
		return ModeLight
	case string(ModeAuto):
		return ModeAuto
	default:
		return ""
	}
}

func applyAuto(mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if lipgloss.HasDarkBackground() {
		return ModeDark
	}
	return ModeLight
}

type palette struct {
	bg, fg, primary, subtle             lipgloss.Color
	success, warning, danger, highlight lipgloss.Color
	border                              lipgloss.Border
}

func buildDark(mode Mode) Theme {
	return build(mode, palette{
		bg:        lipgloss.Color("#0f1115"),
		fg:        lipgloss.Color("#e7e7e7"),
		primary:   lipgloss.Color("#7de2d1"),
		subtle:    lipgloss.Color("#6b6f76"),
		success:   lipgloss.Color("#4ade80"),
		warning:   lipgloss.Color("#facc15"),
		danger:    lipgloss.Color("#f87171"),
		highlight: lipgloss.Color("#1f2937"),
		border:    lipgloss.NormalBorder(),
	})
}

func buildLight(mode Mode) Theme {
	return build(mode, palette{
		bg:        lipgloss.Color("#f7f7f7"),
		fg:        lipgloss.Color("#1b1e23"),
		primary:   lipgloss.Color("#155e75"),
		subtle:    lipgloss.Color("#6b7280"),
		success:   lipgloss.Color("#15803d"),
		warning:   lipgloss.Color("#d97706"),
		danger:    lipgloss.Color("#b91c1c"),
		highlight: lipgloss.Color("#dbeafe"),
		border:    lipgloss.RoundedBorder(),
	})
}

func build(mode Mode, p palette) Theme {
	body := lipgloss.NewStyle().Foreground(p.fg).Background(p.bg).Padding(1, 2)
	return Theme{
		Mode:        mode,
		Title:       lipgloss.NewStyle().Foreground(p.primary).Bold(true).PaddingRight(1),
		Header:      lipgloss.NewStyle().Foreground(p.primary).Background(p.bg).Padding(0, 1),
		Footer:      lipgloss.NewStyle().Foreground(p.subtle).Background(p.bg).Padding(0, 1),
		TabActive:   lipgloss.NewStyle().Foreground(p.bg).Background(p.primary).Padding(0, 2).Bold(true),
		TabInactive: lipgloss.NewStyle().Foreground(p.primary).Background(p.bg).Padding(0, 2),
		Body:        body,
		Card:        body.Copy().BorderStyle(p.border).BorderForeground(p.primary).Padding(1, 2).MarginRight(2),
		Success:     lipgloss.NewStyle().Foreground(p.success).Bold(true),
		Warning:     lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		Danger:      lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		Subtle:      lipgloss.NewStyle().Foreground(p.subtle),
		Selected:    lipgloss.NewStyle().Background(p.highlight).Bold(true),
		Alert:       lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.warning).Padding(0, 1).Width(48),
		Modal:       lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(p.primary).Padding(1, 2),
		Banner:      lipgloss.NewStyle().Foreground(p.bg).Background(p.danger).Bold(true).Padding(0, 1),
	}
}
