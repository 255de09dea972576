package table

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func TestLayoutGrowsByWeight(t *testing.T) {
	cols := []Column{{Title: "A", Min: 4}, {Title: "B", Min: 4, Grow: 1}, {Title: "C", Min: 4, Grow: 3}}
	widths := Layout(cols, 26, 1)
	if diff := cmp.Diff([]int{4, 7, 13}, widths); diff != "" {
		t.Fatalf("widths mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutShrinksGrowableColumns(t *testing.T) {
	cols := []Column{{Title: "A", Min: 4}, {Title: "B", Min: 10, Grow: 1}, {Title: "C", Min: 10, Grow: 1}}
	widths := Layout(cols, 20, 1)
	if diff := cmp.Diff([]int{4, 7, 7}, widths); diff != "" {
		t.Fatalf("widths mismatch (-want +got):\n%s", diff)
	}
	tight := Layout(cols, 2, 1)
	if tight[1] != 3 || tight[2] != 3 || tight[0] != 4 {
		t.Fatalf("expected shrink floor of 3, got %v", tight)
	}
}

func TestRowPadsAndTruncates(t *testing.T) {
	row := Row([]string{"abcdef", "x"}, []int{4, 3}, " ", lipgloss.NewStyle())
	if row != "a... x  " {
		t.Fatalf("unexpected row %q", row)
	}
}

func TestWindowKeepsCursorVisible(t *testing.T) {
	cases := []struct {
		cursor, offset, capacity, n int
		start, end                  int
	}{
		{0, 0, 5, 3, 0, 3},
		{7, 0, 5, 10, 3, 8},
		{1, 4, 5, 10, 1, 6},
		{9, 9, 5, 10, 5, 10},
	}
	for _, tc := range cases {
		start, end := Window(tc.cursor, tc.offset, tc.capacity, tc.n)
		if start != tc.start || end != tc.end {
			t.Fatalf("Window(%d,%d,%d,%d) = [%d,%d), want [%d,%d)", tc.cursor, tc.offset, tc.capacity, tc.n, start, end, tc.start, tc.end)
		}
	}
}

func TestRenderCaretRow(t *testing.T) {
	row := RenderCaretRow(5, lipgloss.NewStyle())
	if row != "v v v" {
		t.Fatalf("unexpected caret row %q", row)
	}
}

func TestPadAndStyle(t *testing.T) {
	if got := PadAndStyle(lipgloss.NewStyle(), "abc", 5, false); got != "abc  " {
		t.Fatalf("unexpected pad %q", got)
	}
	if got := PadAndStyle(lipgloss.NewStyle(), "abc", 0, true); got != "" {
		t.Fatalf("expected empty for zero width, got %q", got)
	}
}
