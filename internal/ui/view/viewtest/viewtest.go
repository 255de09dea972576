// Package viewtest holds helpers shared by view tests.
package viewtest

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Plain strips terminal escape sequences from rendered output.
func Plain(rendered string) string {
	return ansi.Strip(rendered)
}

// AssertContains fails unless every want appears in the plain rendering.
func AssertContains(t *testing.T, rendered string, wants ...string) {
	t.Helper()
	plain := Plain(rendered)
	for _, want := range wants {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, plain)
		}
	}
}

// AssertNotContains fails if any unwanted string appears in the plain rendering.
func AssertNotContains(t *testing.T, rendered string, unwanted ...string) {
	t.Helper()
	plain := Plain(rendered)
	for _, u := range unwanted {
		if strings.Contains(plain, u) {
			t.Fatalf("expected output to omit %q, got:\n%s", u, plain)
		}
	}
}

// Key builds a key message for a single key name or rune string.
func Key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// Type feeds text into model one rune at a time.
func Type(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}
