package nodes

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view/viewtest"
)

type selectedMsg string

type fakeSelector struct{ ids []string }

func (f *fakeSelector) SelectNode(id string) tea.Cmd {
	f.ids = append(f.ids, id)
	return func() tea.Msg { return selectedMsg(id) }
}

func rosterStore() *state.Store {
	store := state.NewStore()
	store.Update(func(s *state.Snapshot) {
		s.Loading = state.Loading{}
		s.Roster = []inventory.Node{
			{ID: "m1", Hostname: "member-1.example.com", IP: "10.0.0.2", Role: inventory.RoleMember, Status: inventory.StatusOffline},
			{ID: "gm", Hostname: "gm.example.com", IP: "10.0.0.1", Role: inventory.RoleMaster, Status: inventory.StatusOnline, HAEnabled: true},
		}
		s.Selected = s.Roster[1]
	})
	return store
}

func TestNodesViewEmpty(t *testing.T) {
	store := state.NewStore()
	m := New(store, theme.New(theme.Options{}), nil)
	m.SetSize(90, 12)
	viewtest.AssertContains(t, m.View(), "Loading node roster")

	store.Update(func(s *state.Snapshot) { s.Loading = state.Loading{} })
	viewtest.AssertContains(t, m.View(), "No nodes reported")
}

func TestNodesViewListsRoster(t *testing.T) {
	m := New(rosterStore(), theme.New(theme.Options{}), nil)
	m.SetSize(120, 20)
	viewtest.AssertContains(t, m.View(), "2 of 2 nodes", "HOSTNAME", "member-1.example.com", "gm.example.com", "OFFLINE", "MASTER")
}

func TestEnterSelectsNodeUnderCursor(t *testing.T) {
	selector := &fakeSelector{}
	m := New(rosterStore(), theme.New(theme.Options{}), selector)
	m.SetSize(120, 20)

	m.Update(viewtest.Key("down"))
	_, cmd := m.Update(viewtest.Key("enter"))
	if cmd == nil {
		t.Fatalf("expected select command")
	}
	if got := cmd(); got != selectedMsg("gm") {
		t.Fatalf("expected gm selection msg, got %v", got)
	}
	if diff := cmp.Diff([]string{"gm"}, selector.ids); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchNarrowsRoster(t *testing.T) {
	selector := &fakeSelector{}
	m := New(rosterStore(), theme.New(theme.Options{}), selector)
	m.SetSize(120, 20)

	m.Update(viewtest.Key("/"))
	if !m.(view.Capturer).Capturing() {
		t.Fatalf("expected search to capture keys")
	}
	viewtest.Type(m, "member")
	m.Update(viewtest.Key("enter"))

	out := m.View()
	viewtest.AssertContains(t, out, "1 of 2 nodes", "member-1.example.com")
	viewtest.AssertNotContains(t, out, "gm.example.com")

	m.Update(viewtest.Key("enter"))
	if diff := cmp.Diff([]string{"m1"}, selector.ids); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}
