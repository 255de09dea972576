package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/util"
)

// Column describes one table column.
type Column struct {
	Title string
	Min   int
	// Grow is the share of spare width the column receives. Zero keeps the
	// column at Min.
	Grow int
}

// Layout assigns a width to every column so the row fits in width. Spare
// width goes to growable columns by weight; a deficit shrinks them, never
// below three runes.
func Layout(cols []Column, width, gap int) []int {
	widths := make([]int, len(cols))
	total, weight := 0, 0
	for i, c := range cols {
		widths[i] = c.Min
		total += c.Min
		weight += c.Grow
	}
	usable := width - gap*max(0, len(cols)-1)
	switch {
	case usable > total && weight > 0:
		extra := usable - total
		given := 0
		last := -1
		for i, c := range cols {
			if c.Grow == 0 {
				continue
			}
			share := extra * c.Grow / weight
			widths[i] += share
			given += share
			last = i
		}
		widths[last] += extra - given
	case usable < total:
		deficit := total - usable
		for deficit > 0 {
			progressed := false
			for i, c := range cols {
				if deficit == 0 {
					break
				}
				if c.Grow == 0 || widths[i] <= 3 {
					continue
				}
				widths[i]--
				deficit--
				progressed = true
			}
			if !progressed {
				break
			}
		}
	}
	return widths
}

// Header renders the column titles.
func Header(cols []Column, widths []int, gap string, style lipgloss.Style) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = PadAndStyle(style, c.Title, widths[i], true)
	}
	return strings.Join(cells, gap)
}

// Row pads every cell to its width and renders the joined row with style.
func Row(cells []string, widths []int, gap string, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		parts[i] = util.PadString(util.TruncateString(cell, w), w)
	}
	return style.Render(strings.Join(parts, gap))
}

// Window returns the [start,end) slice of n rows that keeps cursor visible
// in a viewport of capacity rows, scrolling from offset.
func Window(cursor, offset, capacity, n int) (start, end int) {
	if capacity <= 0 || n <= capacity {
		return 0, n
	}
	start = min(max(0, offset), n-capacity)
	if cursor < start {
		start = cursor
	}
	if cursor >= start+capacity {
		start = cursor - capacity + 1
	}
	return start, start + capacity
}

// RenderCaretRow renders a caret indicator row for truncated tables.
func RenderCaretRow(width int, style lipgloss.Style) string {
	if width <= 0 {
		width = 3
	}
	glyphs := []rune(strings.Repeat(" ", width))
	for _, pos := range []int{0, width / 2, width - 1} {
		glyphs[pos] = 'v'
	}
	return style.Render(string(glyphs))
}

// PadAndStyle truncates/pads text and renders it with the given style.
func PadAndStyle(style lipgloss.Style, text string, width int, truncate bool) string {
	if width <= 0 {
		return ""
	}
	content := text
	if truncate {
		content = util.TruncateString(text, width)
	}
	return style.Render(util.PadString(content, width))
}
