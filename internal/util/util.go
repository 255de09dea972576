package util

import (
	"strings"
	"time"

	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

// Fallback returns def when value is empty or whitespace only.
func Fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// RelativeTime renders a human-friendly duration ago value.
func RelativeTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	delta := time.Since(ts)
	if delta < time.Second {
		delta = time.Second
	}
	return delta.Truncate(time.Second).String() + " ago"
}

// WrapIndex wraps the index within [0,length).
func WrapIndex(current, delta, length int) int {
	if length <= 0 {
		return 0
	}
	next := (current + delta) % length
	if next < 0 {
		next += length
	}
	return next
}

// ClampIndex keeps idx within [0,length).
func ClampIndex(idx, length int) int {
	if length <= 0 || idx < 0 {
		return 0
	}
	if idx >= length {
		return length - 1
	}
	return idx
}

// DisplayName returns the node hostname, falling back to its IP and id.
func DisplayName(node inventory.Node) string {
	if node.Hostname != "" {
		return node.Hostname
	}
	if node.IP != "" {
		return node.IP
	}
	return node.ID
}

// TruncateString truncates a string to width runes with an ellipsis when needed.
func TruncateString(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadString pads value with spaces up to width runes.
func PadString(value string, width int) string {
	padding := width - len([]rune(value))
	if padding > 0 {
		return value + strings.Repeat(" ", padding)
	}
	return value
}
