package projection

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

func sampleRecords() []hotfix.Record {
	return []hotfix.Record{
		{
			Entry: catalog.Entry{
				Name: "dns.bin", Severity: catalog.SeverityImportant, Type: "Generic",
				ImpactedArea:    []string{"DNS", "DHCP"},
				RequiredActions: catalog.RequiredActions{SystemReboot: "Yes"},
				Fixes:           catalog.Fixes{CVEFixes: []catalog.Fix{{ID: "CVE-2024-9999"}}},
			},
			ApplyStatus: hotfix.StatusNotInstalled, Ordinal: 0,
		},
		{
			Entry: catalog.Entry{
				Name: "ntp.bin", Severity: catalog.SeverityRecommended, Type: "Consolidated",
				ImpactedArea:    []string{"NTP"},
				RequiredActions: catalog.RequiredActions{ServiceRestart: []string{"ntpd", "named"}},
			},
			ApplyStatus: hotfix.StatusInstalled, Ordinal: 1,
		},
		{
			Entry: catalog.Entry{
				Name: "dhcp.bin", Severity: catalog.SeverityOptional, Type: "Generic",
				ImpactedArea:    []string{"DHCP"},
				RequiredActions: catalog.RequiredActions{ProductRestart: "yes"},
			},
			ApplyStatus: hotfix.StatusNotInstalled, Ordinal: 2,
		},
		{
			Entry: catalog.Entry{
				Name: "grid.bin", Severity: catalog.SeverityImportant, Type: "Consolidated",
				ImpactedArea: []string{"Grid"},
			},
			ApplyStatus: hotfix.StatusReverted, Ordinal: 3,
		},
	}
}

func names(records []hotfix.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestFacetsFollowRecordOrder(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())

	got := map[Column][]string{}
	for _, f := range e.Facets() {
		for _, c := range f.Candidates {
			if c.Selected {
				t.Fatalf("candidates start unselected, %s=%s is selected", f.Column, c.Value)
			}
			got[f.Column] = append(got[f.Column], c.Value)
		}
	}
	want := map[Column][]string{
		ColumnApplyStatus:     {"Not Installed", "Installed", "Reverted"},
		ColumnSeverity:        {"IMPORTANT", "RECOMMENDED", "OPTIONAL"},
		ColumnType:            {"Generic", "Consolidated"},
		ColumnImpactedArea:    {"DNS", "DHCP", "NTP", "Grid"},
		ColumnRequiredActions: {"System Reboot", "Service Restart: ntpd", "Service Restart: named", "Product Restart"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("facets mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterIsAndOfOrs(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())

	e.OnFilterChange(ColumnImpactedArea, "DHCP", true)
	e.OnFilterChange(ColumnImpactedArea, "NTP", true)
	if diff := cmp.Diff([]string{"dns.bin", "ntp.bin", "dhcp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("OR within column (-want +got):\n%s", diff)
	}

	e.OnFilterChange(ColumnType, "Generic", true)
	if diff := cmp.Diff([]string{"dns.bin", "dhcp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("AND across columns (-want +got):\n%s", diff)
	}

	e.OnFilterChange(ColumnType, "Generic", false)
	e.OnFilterChange(ColumnImpactedArea, "DHCP", false)
	e.OnFilterChange(ColumnImpactedArea, "NTP", false)
	if e.FilterActive() || e.Len() != 4 {
		t.Fatalf("expected all records once every candidate is deselected, got %d", e.Len())
	}
}

func TestFilterRequiredActions(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())

	e.OnFilterChange(ColumnRequiredActions, "Service Restart: named", true)
	if diff := cmp.Diff([]string{"ntp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("service restart filter (-want +got):\n%s", diff)
	}
	e.OnFilterChange(ColumnRequiredActions, "Product Restart", true)
	if diff := cmp.Diff([]string{"ntp.bin", "dhcp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("product restart filter (-want +got):\n%s", diff)
	}
}

func TestFilterRejectsUnknownCandidates(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	if e.OnFilterChange(ColumnName, "dns.bin", true) {
		t.Fatalf("name is not a filter column")
	}
	if e.OnFilterChange(ColumnSeverity, "LOW", true) {
		t.Fatalf("unknown candidate should be ignored")
	}
	if e.FilterActive() {
		t.Fatalf("filter should remain inactive")
	}
}

func TestSearchNestedField(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	e.OnFilterChange(ColumnType, "Consolidated", true)
	e.ToggleExpand(1)

	e.OnSearch("  cve-2024-9999 ")
	if diff := cmp.Diff([]string{"dns.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
	if e.FilterActive() {
		t.Fatalf("search should clear the filter")
	}
	if e.SearchTerm() != "cve-2024-9999" {
		t.Fatalf("unexpected normalized term %q", e.SearchTerm())
	}

	e.OnFilterChange(ColumnSeverity, "IMPORTANT", true)
	if e.SearchTerm() != "" {
		t.Fatalf("filtering should clear the search")
	}
	if diff := cmp.Diff([]string{"dns.bin", "grid.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("filter after search (-want +got):\n%s", diff)
	}
}

func TestEmptySearchRestoresBase(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	e.OnSearch("ntp")
	if e.Len() != 1 {
		t.Fatalf("expected one match, got %d", e.Len())
	}
	e.OnSearch("   ")
	if e.Len() != 4 || e.SearchTerm() != "" {
		t.Fatalf("empty search should restore the base, got %d", e.Len())
	}
}

func TestSortCycle(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())

	e.OnSort(ColumnSeverity)
	if col, dir := e.Sort(); col != ColumnSeverity || dir != SortAscending {
		t.Fatalf("first click should sort ascending, got %s %s", col, dir)
	}
	if diff := cmp.Diff([]string{"dns.bin", "grid.bin", "dhcp.bin", "ntp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("ascending severity (-want +got):\n%s", diff)
	}

	e.OnSort(ColumnSeverity)
	if _, dir := e.Sort(); dir != SortDescending {
		t.Fatalf("second click should sort descending, got %s", dir)
	}
	if diff := cmp.Diff([]string{"ntp.bin", "dhcp.bin", "dns.bin", "grid.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("descending severity (-want +got):\n%s", diff)
	}

	e.OnSort(ColumnSeverity)
	if _, dir := e.Sort(); dir != SortAscending {
		t.Fatalf("third click should return to ascending, got %s", dir)
	}

	e.OnSort(ColumnName)
	if col, dir := e.Sort(); col != ColumnName || dir != SortAscending {
		t.Fatalf("new column should reset to ascending, got %s %s", col, dir)
	}
	if diff := cmp.Diff([]string{"dhcp.bin", "dns.bin", "grid.bin", "ntp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("ascending name (-want +got):\n%s", diff)
	}
}

func TestSortSpecialColumns(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())

	e.OnSort(ColumnImpactedArea)
	if diff := cmp.Diff([]string{"dhcp.bin", "dns.bin", "grid.bin", "ntp.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("impacted area sort (-want +got):\n%s", diff)
	}

	e.OnSort(ColumnRequiredActions)
	// "-" < "Product Restart" < "Service Restart(...)" < "System Reboot"
	if diff := cmp.Diff([]string{"grid.bin", "dhcp.bin", "ntp.bin", "dns.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("required actions sort (-want +got):\n%s", diff)
	}
}

func TestSortKeepsFilter(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	e.OnFilterChange(ColumnSeverity, "IMPORTANT", true)
	e.OnSort(ColumnName)
	e.OnSort(ColumnName)
	if diff := cmp.Diff([]string{"grid.bin", "dns.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("sorted filter (-want +got):\n%s", diff)
	}
}

func TestClearAll(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	e.OnFilterChange(ColumnSeverity, "IMPORTANT", true)
	e.OnSort(ColumnName)
	e.ToggleExpand(0)

	e.ClearAll()
	if e.FilterActive() || e.SearchTerm() != "" {
		t.Fatalf("expected filter and search cleared")
	}
	if col, dir := e.Sort(); col != "" || dir != SortNone {
		t.Fatalf("expected sort cleared, got %s %s", col, dir)
	}
	if diff := cmp.Diff([]string{"dns.bin", "ntp.bin", "dhcp.bin", "grid.bin"}, names(e.Projection())); diff != "" {
		t.Fatalf("expected catalog order (-want +got):\n%s", diff)
	}
	for _, rec := range e.Projection() {
		if rec.Expanded {
			t.Fatalf("expected every record collapsed")
		}
	}
}

func TestToggleExpand(t *testing.T) {
	e := New()
	e.SetRecords(sampleRecords())
	if !e.ToggleExpand(2) {
		t.Fatalf("expected record to expand")
	}
	if !e.Projection()[2].Expanded {
		t.Fatalf("projection should report expanded record")
	}
	if e.ToggleExpand(2) {
		t.Fatalf("expected record to collapse")
	}
	e.ToggleExpand(1)
	e.OnSearch("dns")
	for _, rec := range e.Projection() {
		if rec.Expanded {
			t.Fatalf("search should collapse rows")
		}
	}
}

func TestMatchNodes(t *testing.T) {
	nodes := []inventory.Node{
		{ID: "1", Hostname: "gm.example.com", Role: inventory.RoleMaster, Status: inventory.StatusOnline, HAEnabled: true},
		{ID: "2", Hostname: "member-1.example.com", Role: inventory.RoleMember, Status: inventory.StatusOffline},
	}
	if got := MatchNodes(nodes, " "); len(got) != 2 {
		t.Fatalf("empty term should return all nodes")
	}
	got := MatchNodes(nodes, "OFFLINE")
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected match %+v", got)
	}
	if got := MatchNodes(nodes, "true"); len(got) != 0 {
		t.Fatalf("boolean fields are not searched, got %+v", got)
	}
}
