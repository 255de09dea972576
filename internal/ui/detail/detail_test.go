package detail

import (
	"testing"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view/viewtest"
)

type closerFunc func()

func (f closerFunc) CloseDetail() { f() }

func storeWithDetail() *state.Store {
	store := state.NewStore()
	store.Update(func(s *state.Snapshot) {
		s.Detail = &state.Detail{
			Record: hotfix.Record{
				Entry: catalog.Entry{
					Name:           "hf-dns",
					Severity:       catalog.SeverityImportant,
					Type:           "SECURITY",
					TicketID:       "NIOS-42",
					CompatibleNode: catalog.CompatibleAll,
					Summary:        "Fixes a resolver crash.",
					Fixes: catalog.Fixes{
						CVEFixes: []catalog.Fix{{ID: "CVE-2024-1", Summary: "resolver overflow"}},
					},
					RequiredActions: catalog.RequiredActions{ServiceRestart: []string{"DNS"}},
				},
				ApplyStatus: hotfix.StatusNotInstalled,
			},
			Nodes: []inventory.Node{{ID: "gm", Hostname: "gm.example.com", Role: inventory.RoleMaster}},
		}
	})
	return store
}

func TestInactiveWithoutDetail(t *testing.T) {
	m := New(state.NewStore(), theme.New(theme.Options{}), nil)
	m.SetSize(100, 40)
	if m.Active() {
		t.Fatalf("expected overlay to be inactive")
	}
	if m.View() != "" {
		t.Fatalf("expected empty view")
	}
	if _, handled := m.Update(viewtest.Key("esc")); handled {
		t.Fatalf("expected key to pass through")
	}
}

func TestRendersRecordFields(t *testing.T) {
	m := New(storeWithDetail(), theme.New(theme.Options{}), nil)
	m.SetSize(110, 60)

	viewtest.AssertContains(t, m.View(),
		"Hotfix · hf-dns",
		"Not Installed",
		"NIOS-42",
		"Service Restart(DNS)",
		"General Enhancements",
		"CVE Fixes(CVE-2024-1)",
		"CVE-2024-1  resolver overflow",
		"Fixes a resolver crash.",
		"Compatible nodes (1)",
		"gm.example.com",
	)
}

func TestRequiredActionsFallback(t *testing.T) {
	store := storeWithDetail()
	store.Update(func(s *state.Snapshot) { s.Detail.Record.RequiredActions = catalog.RequiredActions{} })
	m := New(store, theme.New(theme.Options{}), nil)
	m.SetSize(110, 60)
	viewtest.AssertContains(t, m.View(), "Required actions  Not Available")
}

func TestEscClosesDetail(t *testing.T) {
	closed := 0
	store := storeWithDetail()
	m := New(store, theme.New(theme.Options{}), closerFunc(func() {
		closed++
		store.Update(func(s *state.Snapshot) { s.Detail = nil })
	}))
	m.SetSize(100, 40)

	if _, handled := m.Update(viewtest.Key("down")); !handled {
		t.Fatalf("expected scroll key to be handled")
	}
	if _, handled := m.Update(viewtest.Key("esc")); !handled {
		t.Fatalf("expected esc to be handled")
	}
	if closed != 1 {
		t.Fatalf("expected one close, got %d", closed)
	}
	if m.Active() {
		t.Fatalf("expected overlay to close")
	}
}
