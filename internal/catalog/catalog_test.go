package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleYAML = `
type: NiosHotfixManifest
metadata:
  version: 1
  generated: "2024-03-01T10:00:00Z"
data:
  - name: hotfix-dns-1.bin
    sha256: 0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef
    revert:
      name: hotfix-dns-1-revert.bin
      sha256: abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789
    ticketId: NIOS-1001
    released: "2024-02-11T08:30:00.000Z"
    compatibleReleases: [NIOS-9.0.1]
    type: Generic
    compatibleNode: ALL
    summary: Fixes a DNS crash
    impactedArea: [DNS, DHCP]
    fixes:
      BUGFIX:
        - id: NIOS-77
          summary: crash on reload
          ref: https://example.com/NIOS-77
      CVE:
        - id: CVE-2024-1234
          summary: overflow
          ref: https://example.com/cve
      SECURITY: []
    severity: IMPORTANT
    references:
      - type: KB
        link: https://example.com/kb/1
    requiredActions:
      systemReboot: "No"
      productRestart: "No"
      serviceRestart: [named]
    incompatible: []
`

func TestDecodeYAMLManifest(t *testing.T) {
	m, err := Decode([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != ManifestType {
		t.Fatalf("expected type %q, got %q", ManifestType, m.Type)
	}
	if len(m.Data) != 1 {
		t.Fatalf("expected one entry, got %d", len(m.Data))
	}
	entry := m.Data[0]
	if entry.RevertName() != "hotfix-dns-1-revert.bin" {
		t.Fatalf("unexpected revert %q", entry.RevertName())
	}
	if got := entry.Fixes.CVEFixes[0].ID; got != "CVE-2024-1234" {
		t.Fatalf("unexpected cve id %q", got)
	}
	if err := Validate(m); err != nil {
		t.Fatalf("expected sample to validate, got %v", err)
	}
}

func TestDecodeJSONManifest(t *testing.T) {
	raw := `{"type":"NiosHotfixManifest","metadata":{"version":2,"generated":"2024-03-01T10:00:00Z"},
	"data":[{"name":"a.bin","severity":"OPTIONAL","compatibleNode":"MEMBER","impactedArea":["NTP"],
	"requiredActions":{"systemReboot":"Yes","productRestart":"No","serviceRestart":[]}}]}`
	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Entry{
		Name:            "a.bin",
		Severity:        SeverityOptional,
		CompatibleNode:  "MEMBER",
		ImpactedArea:    []string{"NTP"},
		RequiredActions: RequiredActions{SystemReboot: "Yes", ProductRestart: "No", ServiceRestart: []string{}},
	}
	if diff := cmp.Diff(want, m.Data[0]); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	if m.Data[0].Revert != nil {
		t.Fatalf("expected missing revert to stay nil")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Data) != 1 {
		t.Fatalf("expected one entry, got %d", len(m.Data))
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Entry)
		field  string
	}{
		{"bad name", func(e *Entry) { e.Name = "hotfix" }, "name"},
		{"short sha", func(e *Entry) { e.SHA256 = "abc" }, "sha256"},
		{"bad ticket", func(e *Entry) { e.TicketID = "JIRA-1" }, "ticketId"},
		{"bad released", func(e *Entry) { e.Released = "2024-02-11" }, "released"},
		{"no releases", func(e *Entry) { e.CompatibleReleases = nil }, "compatibleReleases"},
		{"bad type", func(e *Entry) { e.Type = "Other" }, "type"},
		{"bad node", func(e *Entry) { e.CompatibleNode = "GRID" }, "compatibleNode"},
		{"empty summary", func(e *Entry) { e.Summary = " " }, "summary"},
		{"bad cve", func(e *Entry) { e.Fixes.CVEFixes[0].ID = "CVE-1" }, "fixes.CVE"},
		{"bad severity", func(e *Entry) { e.Severity = "LOW" }, "severity"},
		{"bad reboot", func(e *Entry) { e.RequiredActions.SystemReboot = "yes" }, "requiredActions.systemReboot"},
		{"two actions", func(e *Entry) { e.RequiredActions.SystemReboot = "Yes" }, "requiredActions"},
		{"revert clash", func(e *Entry) { e.Revert.Name = e.Name }, "revert.name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := Decode([]byte(sampleYAML))
			tc.mutate(&m.Data[0])
			err := Validate(m)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, verr.Field, err)
			}
			if verr.Index != 0 {
				t.Fatalf("expected index 0, got %d", verr.Index)
			}
		})
	}
}

func TestValidateEnvelope(t *testing.T) {
	if err := Validate(Manifest{Type: "Other"}); err == nil || !strings.Contains(err.Error(), "type") {
		t.Fatalf("expected type error, got %v", err)
	}
	m := Manifest{Type: ManifestType, Metadata: Metadata{Generated: "2024-03-01T10:00:00Z"}}
	if err := Validate(m); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestRequiredActionsLabelAndCategories(t *testing.T) {
	cases := []struct {
		name       string
		actions    RequiredActions
		label      string
		categories []string
	}{
		{"reboot wins", RequiredActions{SystemReboot: "Yes", ProductRestart: "Yes", ServiceRestart: []string{"dns"}}, "System Reboot", []string{"System Reboot"}},
		{"restart", RequiredActions{SystemReboot: "No", ProductRestart: "YES"}, "Product Restart", []string{"Product Restart"}},
		{"services", RequiredActions{SystemReboot: "No", ProductRestart: "No", ServiceRestart: []string{"dns", "ntp"}}, "Service Restart(dns, ntp)", []string{"Service Restart: dns", "Service Restart: ntp"}},
		{"nothing", RequiredActions{SystemReboot: "No", ProductRestart: "No"}, "-", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.actions.Label("-"); got != tc.label {
				t.Fatalf("label: want %q got %q", tc.label, got)
			}
			if diff := cmp.Diff(tc.categories, tc.actions.Categories()); diff != "" {
				t.Fatalf("categories (-want +got):\n%s", diff)
			}
			for _, c := range tc.categories {
				if !tc.actions.MatchesCategory(c) {
					t.Fatalf("expected %q to match its own category", c)
				}
			}
		})
	}
	if (RequiredActions{ServiceRestart: []string{"dns"}}).MatchesCategory("Service Restart: ntp") {
		t.Fatalf("unexpected match for other service")
	}
}

func TestFixesSummary(t *testing.T) {
	f := Fixes{
		Bugfixes:      []Fix{{ID: "NIOS-1"}},
		CVEFixes:      []Fix{{ID: "CVE-2024-1"}, {ID: "CVE-2024-2"}},
		SecurityFixes: []Fix{{ID: "S-1"}},
	}
	want := "Bugfixes, CVE Fixes(CVE-2024-1, CVE-2024-2), Security Fixes"
	if got := f.Summary(); got != want {
		t.Fatalf("want %q got %q", want, got)
	}
	if got := (Fixes{}).Summary(); got != "General Enhancements" {
		t.Fatalf("unexpected empty summary %q", got)
	}
}

func TestStoreIsImmutableAfterSet(t *testing.T) {
	store := NewStore()
	if store.Ready() {
		t.Fatalf("new store should not be ready")
	}
	first := Manifest{Data: []Entry{{Name: "a.bin"}}}
	if !store.Set(first) {
		t.Fatalf("expected first Set to succeed")
	}
	first.Data[0].Name = "mutated"
	if store.Entries()[0].Name != "a.bin" {
		t.Fatalf("store should hold its own copy of the entries")
	}
	if store.Set(Manifest{Data: []Entry{{Name: "b.bin"}}}) {
		t.Fatalf("expected second Set to be ignored")
	}
	store.Reset()
	if store.Ready() || len(store.Entries()) != 0 {
		t.Fatalf("expected reset store to be empty")
	}
}
