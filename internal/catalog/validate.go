package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ValidationError pinpoints the manifest field that failed validation.
// Index is -1 for envelope-level problems.
type ValidationError struct {
	Index int
	Name  string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("manifest %s: %s", e.Field, e.Msg)
	}
	if e.Name != "" {
		return fmt.Sprintf("entry %d (%s) %s: %s", e.Index, e.Name, e.Field, e.Msg)
	}
	return fmt.Sprintf("entry %d %s: %s", e.Index, e.Field, e.Msg)
}

var (
	reBinName       = regexp.MustCompile(`^.+\.bin$`)
	reSHA256        = regexp.MustCompile(`^[a-z0-9]{64}$`)
	reTicket        = regexp.MustCompile(`^NIOS-[0-9]+$`)
	reReleased      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
	reRelease       = regexp.MustCompile(`^NIOS-\d\.\d\.\d$`)
	reCVE           = regexp.MustCompile(`^CVE-[0-9]{4}-[0-9]+$`)
	validTypes      = map[string]bool{"Generic": true, "Consolidated": true}
	validNodes      = map[string]bool{CompatibleAll: true, "MASTER": true, "MEMBER": true}
	validYesNo      = map[string]bool{"Yes": true, "No": true}
	validSeverities = map[Severity]bool{
		SeverityMandatory:   true,
		SeverityImportant:   true,
		SeverityRecommended: true,
		SeverityOptional:    true,
	}
)

// Validate checks a manifest against the publishing rules for the hotfix
// catalog. It stops at the first problem found.
func Validate(m Manifest) error {
	if m.Type != ManifestType {
		return &ValidationError{Index: -1, Field: "type", Msg: fmt.Sprintf("must be %q", ManifestType)}
	}
	if _, err := time.Parse(time.RFC3339, m.Metadata.Generated); err != nil {
		return &ValidationError{Index: -1, Field: "metadata.generated", Msg: "not a valid RFC3339 timestamp"}
	}
	if len(m.Data) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(m.Data)*2)
	for idx, entry := range m.Data {
		if err := validateEntry(entry, seen); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Index = idx
				verr.Name = entry.Name
			}
			return err
		}
	}
	return nil
}

func validateEntry(e Entry, seen map[string]bool) error {
	fail := func(field, format string, args ...any) error {
		return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
	}

	if !reBinName.MatchString(e.Name) {
		return fail("name", "must end in .bin")
	}
	if seen[e.Name] {
		return fail("name", "duplicate hotfix entry")
	}
	seen[e.Name] = true
	if !reSHA256.MatchString(e.SHA256) {
		return fail("sha256", "must be 64 lowercase alphanumeric characters")
	}
	if e.Revert != nil && e.Revert.Name != "" {
		if !reBinName.MatchString(e.Revert.Name) {
			return fail("revert.name", "must end in .bin")
		}
		if seen[e.Revert.Name] {
			return fail("revert.name", "duplicate hotfix entry")
		}
		seen[e.Revert.Name] = true
	}
	if e.Revert != nil && e.Revert.SHA256 != "" && !reSHA256.MatchString(e.Revert.SHA256) {
		return fail("revert.sha256", "must be 64 lowercase alphanumeric characters")
	}
	if !reTicket.MatchString(e.TicketID) {
		return fail("ticketId", "must be in NIOS-9999 format")
	}
	if _, err := time.Parse(time.RFC3339, e.Released); err != nil || !reReleased.MatchString(e.Released) {
		return fail("released", "must be in yyyy-MM-ddThh:mm:ss.sssZ format")
	}
	if len(e.CompatibleReleases) == 0 {
		return fail("compatibleReleases", "at least one compatible release is required")
	}
	for _, rel := range e.CompatibleReleases {
		if !reRelease.MatchString(rel) {
			return fail("compatibleReleases", "%q is not a valid release", rel)
		}
	}
	if !validTypes[e.Type] {
		return fail("type", "must be one of Generic, Consolidated")
	}
	if !validNodes[e.CompatibleNode] {
		return fail("compatibleNode", "must be one of ALL, MASTER, MEMBER")
	}
	if strings.TrimSpace(e.Summary) == "" {
		return fail("summary", "cannot be empty")
	}
	if len(e.ImpactedArea) == 0 {
		return fail("impactedArea", "at least one impacted area is required")
	}
	for _, area := range e.ImpactedArea {
		if area == "" {
			return fail("impactedArea", "impacted area cannot be empty")
		}
	}
	if err := validateFixes("fixes.BUGFIX", e.Fixes.Bugfixes, reTicket); err != nil {
		return err
	}
	if err := validateFixes("fixes.CVE", e.Fixes.CVEFixes, reCVE); err != nil {
		return err
	}
	if err := validateFixes("fixes.SECURITY", e.Fixes.SecurityFixes, nil); err != nil {
		return err
	}
	if !validSeverities[e.Severity] {
		return fail("severity", "must be one of MANDATORY, IMPORTANT, RECOMMENDED, OPTIONAL")
	}
	for _, ref := range e.References {
		if ref.Type == "" {
			return fail("references", "type cannot be empty")
		}
		if _, err := url.ParseRequestURI(ref.Link); err != nil {
			return fail("references", "link %q is not a valid URL", ref.Link)
		}
	}
	if err := validateActions(e.RequiredActions); err != nil {
		return err
	}
	for _, name := range e.Incompatible {
		if !reBinName.MatchString(name) {
			return fail("incompatible", "%q must end in .bin", name)
		}
	}
	return nil
}

func validateFixes(field string, fixes []Fix, idPattern *regexp.Regexp) error {
	for _, fix := range fixes {
		if idPattern != nil && !idPattern.MatchString(fix.ID) {
			return &ValidationError{Field: field, Msg: fmt.Sprintf("id %q has the wrong format", fix.ID)}
		}
		if strings.TrimSpace(fix.Summary) == "" {
			return &ValidationError{Field: field, Msg: "summary cannot be empty"}
		}
		if _, err := url.ParseRequestURI(fix.Ref); err != nil {
			return &ValidationError{Field: field, Msg: fmt.Sprintf("reference %q is not a valid URL", fix.Ref)}
		}
	}
	return nil
}

func validateActions(ra RequiredActions) error {
	if !validYesNo[ra.SystemReboot] {
		return &ValidationError{Field: "requiredActions.systemReboot", Msg: "must be Yes or No"}
	}
	if !validYesNo[ra.ProductRestart] {
		return &ValidationError{Field: "requiredActions.productRestart", Msg: "must be Yes or No"}
	}
	actions := 0
	if ra.SystemReboot == "Yes" {
		actions++
	}
	if ra.ProductRestart == "Yes" {
		actions++
	}
	if len(ra.ServiceRestart) > 0 {
		actions++
	}
	if actions > 1 {
		return &ValidationError{Field: "requiredActions", Msg: "at most one of systemReboot, productRestart, serviceRestart may be set"}
	}
	return nil
}
