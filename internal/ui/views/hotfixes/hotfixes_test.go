package hotfixes

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view/viewtest"
)

type fakeActions struct {
	searches []string
	filters  []string
	sorts    []projection.Column
	cleared  int
	expanded []int
	opened   []int
}

func (f *fakeActions) Search(term string) { f.searches = append(f.searches, term) }

func (f *fakeActions) ToggleFilter(col projection.Column, value string, selected bool) bool {
	mark := "-"
	if selected {
		mark = "+"
	}
	f.filters = append(f.filters, mark+string(col)+"="+value)
	return true
}

func (f *fakeActions) Sort(col projection.Column) { f.sorts = append(f.sorts, col) }

func (f *fakeActions) ClearAll() { f.cleared++ }

func (f *fakeActions) ToggleExpand(ordinal int) bool {
	f.expanded = append(f.expanded, ordinal)
	return true
}

func (f *fakeActions) OpenDetail(ordinal int) bool {
	f.opened = append(f.opened, ordinal)
	return true
}

func (f *fakeActions) CloseDetail() {}

func record(ordinal int, name string, sev catalog.Severity, status hotfix.ApplyStatus) hotfix.Record {
	return hotfix.Record{
		Entry: catalog.Entry{
			Name:         name,
			Severity:     sev,
			Type:         "BUGFIX",
			Released:     "2024-03-01",
			Summary:      "summary of " + name,
			ImpactedArea: []string{"DNS"},
			TicketID:     "NIOS-1",
		},
		ApplyStatus: status,
		Ordinal:     ordinal,
	}
}

func loadedStore(rows ...hotfix.Record) *state.Store {
	store := state.NewStore()
	store.Update(func(s *state.Snapshot) {
		s.Loading = state.Loading{}
		s.Selected = inventory.Node{ID: "gm", Hostname: "gm.example.com", Role: inventory.RoleMaster}
		s.NodeData = inventory.NodeData{Role: inventory.RoleMaster, Status: inventory.StatusOnline}
		s.Table = state.Table{
			Rows:  rows,
			Total: len(rows),
			Facets: []projection.Facet{{
				Column: projection.ColumnSeverity,
				Candidates: []projection.Candidate{
					{Value: "IMPORTANT"},
					{Value: "OPTIONAL", Selected: true},
				},
			}},
		}
	})
	return store
}

func newModel(store *state.Store, actions *fakeActions) view.Model {
	m := New(store, theme.New(theme.Options{Preferred: "dark"}), actions)
	m.SetSize(160, 30)
	return m
}

func TestViewRendersRows(t *testing.T) {
	store := loadedStore(
		record(0, "hf-dns", catalog.SeverityImportant, hotfix.StatusNotInstalled),
		record(1, "hf-grid", catalog.SeverityRecommended, hotfix.StatusInstalled),
	)
	m := newModel(store, &fakeActions{})

	out := m.View()
	viewtest.AssertContains(t, out, "STATUS", "NAME", "hf-dns", "hf-grid", "Not Installed", "Installed", "showing 2 of 2", "gm.example.com")
}

func TestViewShowsLoadingAndAuth(t *testing.T) {
	store := state.NewStore()
	m := newModel(store, &fakeActions{})
	viewtest.AssertContains(t, m.View(), "Loading hotfix catalog")

	store.Update(func(s *state.Snapshot) { s.AuthRequired = true })
	viewtest.AssertContains(t, m.View(), "rejected the session")
}

func TestEmptyTableMessages(t *testing.T) {
	store := loadedStore()
	m := newModel(store, &fakeActions{})
	viewtest.AssertContains(t, m.View(), "No hotfixes apply")

	store.Update(func(s *state.Snapshot) { s.Table.Total = 4 })
	viewtest.AssertContains(t, m.View(), "No hotfixes match")
}

func TestSelectAndExpandUseOrdinals(t *testing.T) {
	store := loadedStore(
		record(3, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled),
		record(7, "hf-b", catalog.SeverityOptional, hotfix.StatusNotInstalled),
	)
	actions := &fakeActions{}
	m := newModel(store, actions)

	m.Update(viewtest.Key("down"))
	m.Update(viewtest.Key("enter"))
	m.Update(viewtest.Key("up"))
	m.Update(viewtest.Key(" "))

	if diff := cmp.Diff([]int{7}, actions.opened); diff != "" {
		t.Fatalf("opened mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, actions.expanded); diff != "" {
		t.Fatalf("expanded mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandedRowShowsDetails(t *testing.T) {
	rec := record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled)
	rec.Expanded = true
	m := newModel(loadedStore(rec), &fakeActions{})
	viewtest.AssertContains(t, m.View(), "Summary: summary of hf-a", "Ticket: NIOS-1")
}

func TestSearchModeCapturesKeys(t *testing.T) {
	store := loadedStore(record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled))
	actions := &fakeActions{}
	m := newModel(store, actions)

	m.Update(viewtest.Key("/"))
	capturer, ok := m.(view.Capturer)
	if !ok || !capturer.Capturing() {
		t.Fatalf("expected search mode to capture keys")
	}
	viewtest.Type(m, "dns")
	m.Update(viewtest.Key("enter"))
	if capturer.Capturing() {
		t.Fatalf("expected enter to leave search mode")
	}
	if diff := cmp.Diff([]string{"d", "dn", "dns"}, actions.searches); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchBoxFollowsDroppedSearch(t *testing.T) {
	store := loadedStore(record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled))
	actions := &fakeActions{}
	m := newModel(store, actions)

	m.Update(viewtest.Key("/"))
	viewtest.Type(m, "dns")
	m.Update(viewtest.Key("enter"))
	store.Update(func(s *state.Snapshot) { s.Table.Search = "dns" })

	m.Update(viewtest.Key("/"))
	viewtest.Type(m, "x")
	m.Update(viewtest.Key("enter"))
	if got := actions.searches[len(actions.searches)-1]; got != "dnsx" {
		t.Fatalf("expected active search to be extended, got %q", got)
	}

	// Selecting another node resets the table's search.
	store.Update(func(s *state.Snapshot) { s.Table.Search = "" })
	m.Update(viewtest.Key("/"))
	viewtest.Type(m, "x")
	if got := actions.searches[len(actions.searches)-1]; got != "x" {
		t.Fatalf("expected a fresh search after the reset, got %q", got)
	}
}

func TestFilterPanelTogglesCandidates(t *testing.T) {
	store := loadedStore(record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled))
	actions := &fakeActions{}
	m := newModel(store, actions)

	m.Update(viewtest.Key("f"))
	out := m.View()
	viewtest.AssertContains(t, out, "Filters", "SEVERITY", "[ ] IMPORTANT", "[x] OPTIONAL")

	m.Update(viewtest.Key(" "))
	m.Update(viewtest.Key("down"))
	m.Update(viewtest.Key(" "))
	m.Update(viewtest.Key("esc"))

	want := []string{"+severity=IMPORTANT", "-severity=OPTIONAL"}
	if diff := cmp.Diff(want, actions.filters); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	if m.(view.Capturer).Capturing() {
		t.Fatalf("expected esc to close the filter panel")
	}
}

func TestSortKeysAndClear(t *testing.T) {
	store := loadedStore(record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled))
	actions := &fakeActions{}
	m := newModel(store, actions)

	m.Update(viewtest.Key("2"))
	m.Update(viewtest.Key("7"))
	m.Update(viewtest.Key("c"))

	want := []projection.Column{projection.ColumnName, projection.ColumnRequiredActions}
	if diff := cmp.Diff(want, actions.sorts); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
	if actions.cleared != 1 {
		t.Fatalf("expected one clear, got %d", actions.cleared)
	}
}

func TestHeaderMarksSortDirection(t *testing.T) {
	store := loadedStore(record(0, "hf-a", catalog.SeverityOptional, hotfix.StatusNotInstalled))
	store.Update(func(s *state.Snapshot) {
		s.Table.SortBy = projection.ColumnName
		s.Table.SortDir = projection.SortDescending
	})
	m := newModel(store, &fakeActions{})
	viewtest.AssertContains(t, m.View(), "NAME ▼", "sort name desc")
}
