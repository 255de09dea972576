package catalog

import "strings"

// Severity ranks how urgently a hotfix should be applied.
type Severity string

const (
	SeverityMandatory   Severity = "MANDATORY"
	SeverityImportant   Severity = "IMPORTANT"
	SeverityRecommended Severity = "RECOMMENDED"
	SeverityOptional    Severity = "OPTIONAL"
)

// DefaultSeverities are always present in severity roll-ups, in display order.
var DefaultSeverities = []Severity{SeverityImportant, SeverityRecommended, SeverityOptional}

// CompatibleAll marks an entry that applies to every node role.
const CompatibleAll = "ALL"

// ManifestType is the expected value of Manifest.Type.
const ManifestType = "NiosHotfixManifest"

// Manifest is the envelope returned by the catalog fetch.
type Manifest struct {
	Type     string   `json:"type" yaml:"type"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Data     []Entry  `json:"data" yaml:"data"`
}

// Metadata describes when and how the catalog was generated.
type Metadata struct {
	Version   float64 `json:"version" yaml:"version"`
	Generated string  `json:"generated" yaml:"generated"`
}

// Entry is a single hotfix published in the catalog.
type Entry struct {
	Name               string          `json:"name" yaml:"name"`
	SHA256             string          `json:"sha256" yaml:"sha256"`
	Revert             *Revert         `json:"revert,omitempty" yaml:"revert,omitempty"`
	TicketID           string          `json:"ticketId" yaml:"ticketId"`
	Released           string          `json:"released" yaml:"released"`
	CompatibleReleases []string        `json:"compatibleReleases" yaml:"compatibleReleases"`
	Type               string          `json:"type" yaml:"type"`
	CompatibleNode     string          `json:"compatibleNode" yaml:"compatibleNode"`
	Summary            string          `json:"summary" yaml:"summary"`
	ImpactedArea       []string        `json:"impactedArea" yaml:"impactedArea"`
	Fixes              Fixes           `json:"fixes" yaml:"fixes"`
	Severity           Severity        `json:"severity" yaml:"severity"`
	References         []Reference     `json:"references" yaml:"references"`
	RequiredActions    RequiredActions `json:"requiredActions" yaml:"requiredActions"`
	Incompatible       []string        `json:"incompatible" yaml:"incompatible"`
}

// Revert names the package that rolls an entry back.
type Revert struct {
	Name   string `json:"name" yaml:"name"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Fixes groups the issues a hotfix resolves.
type Fixes struct {
	Bugfixes      []Fix `json:"BUGFIX" yaml:"BUGFIX"`
	CVEFixes      []Fix `json:"CVE" yaml:"CVE"`
	SecurityFixes []Fix `json:"SECURITY" yaml:"SECURITY"`
}

// Fix is one resolved issue.
type Fix struct {
	ID      string `json:"id" yaml:"id"`
	Summary string `json:"summary" yaml:"summary"`
	Ref     string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Reference links to external documentation.
type Reference struct {
	Type string `json:"type" yaml:"type"`
	Link string `json:"link" yaml:"link"`
}

// RequiredActions lists what must happen after the hotfix is applied.
type RequiredActions struct {
	SystemReboot   string   `json:"systemReboot" yaml:"systemReboot"`
	ProductRestart string   `json:"productRestart" yaml:"productRestart"`
	ServiceRestart []string `json:"serviceRestart" yaml:"serviceRestart"`
}

const (
	LabelSystemReboot   = "System Reboot"
	LabelProductRestart = "Product Restart"
	// ServiceRestartPrefix prefixes one filter candidate per restarted service.
	ServiceRestartPrefix = "Service Restart: "
)

// IsYes reports whether a Yes/No flag is set.
func IsYes(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}

// RebootRequired reports whether the system must be rebooted.
func (r RequiredActions) RebootRequired() bool { return IsYes(r.SystemReboot) }

// ProductRestartRequired reports whether the product must be restarted.
func (r RequiredActions) ProductRestartRequired() bool { return IsYes(r.ProductRestart) }

// Label summarizes the required actions as a single string, falling back to
// def when nothing is required.
func (r RequiredActions) Label(def string) string {
	switch {
	case r.RebootRequired():
		return LabelSystemReboot
	case r.ProductRestartRequired():
		return LabelProductRestart
	case len(r.ServiceRestart) > 0:
		return "Service Restart(" + strings.Join(r.ServiceRestart, ", ") + ")"
	}
	return def
}

// Categories returns the filter categories of the required actions. Reboot
// and product restart yield one category; otherwise each restarted service
// yields its own.
func (r RequiredActions) Categories() []string {
	switch {
	case r.RebootRequired():
		return []string{LabelSystemReboot}
	case r.ProductRestartRequired():
		return []string{LabelProductRestart}
	}
	out := make([]string, 0, len(r.ServiceRestart))
	for _, svc := range r.ServiceRestart {
		out = append(out, ServiceRestartPrefix+svc)
	}
	return out
}

// MatchesCategory reports whether the actions satisfy a category produced by Categories.
func (r RequiredActions) MatchesCategory(category string) bool {
	switch category {
	case LabelSystemReboot:
		return r.RebootRequired()
	case LabelProductRestart:
		return r.ProductRestartRequired()
	}
	svc, ok := strings.CutPrefix(category, ServiceRestartPrefix)
	if !ok {
		return false
	}
	for _, candidate := range r.ServiceRestart {
		if candidate == svc {
			return true
		}
	}
	return false
}

// Summary describes the fixes in one line.
func (f Fixes) Summary() string {
	result := "General Enhancements"
	if len(f.Bugfixes) > 0 {
		result = "Bugfixes"
	}
	if len(f.CVEFixes) > 0 {
		ids := make([]string, len(f.CVEFixes))
		for i, fix := range f.CVEFixes {
			ids[i] = fix.ID
		}
		result += ", CVE Fixes(" + strings.Join(ids, ", ") + ")"
	}
	if len(f.SecurityFixes) > 0 {
		result += ", Security Fixes"
	}
	return result
}

// AppliesTo reports whether the entry is applicable to a node with the given role.
func (e Entry) AppliesTo(role string) bool {
	return e.CompatibleNode == CompatibleAll || e.CompatibleNode == role
}

// RevertName returns the revert package name, or "" when the entry has none.
func (e Entry) RevertName() string {
	if e.Revert == nil {
		return ""
	}
	return e.Revert.Name
}
