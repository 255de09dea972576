package util

import (
	"testing"
	"time"

	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

func TestFallback(t *testing.T) {
	if got := Fallback("  ", "-"); got != "-" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Fallback("x", "-"); got != "x" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestWrapAndClampIndex(t *testing.T) {
	if got := WrapIndex(0, -1, 3); got != 2 {
		t.Fatalf("expected wrap to 2, got %d", got)
	}
	if got := WrapIndex(2, 1, 3); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
	if got := ClampIndex(5, 3); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := ClampIndex(-1, 3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampIndex(1, 0); got != 0 {
		t.Fatalf("expected 0 for empty list, got %d", got)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		node inventory.Node
		want string
	}{
		{inventory.Node{ID: "1", IP: "10.0.0.1", Hostname: "gm"}, "gm"},
		{inventory.Node{ID: "1", IP: "10.0.0.1"}, "10.0.0.1"},
		{inventory.Node{ID: "1"}, "1"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.node); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q, want %q", tc.node, got, tc.want)
		}
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := TruncateString("hotfix-dns.bin", 8); got != "hotfi..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := TruncateString("abc", 2); got != "ab" {
		t.Fatalf("unexpected short truncation %q", got)
	}
	if got := PadString("ab", 4); got != "ab  " {
		t.Fatalf("unexpected padding %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	if got := RelativeTime(time.Time{}); got != "-" {
		t.Fatalf("expected dash for zero time, got %q", got)
	}
	if got := RelativeTime(time.Now()); got != "1s ago" {
		t.Fatalf("expected 1s ago, got %q", got)
	}
}
