package projection

import (
	"strconv"
	"strings"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

// searchText flattens every non-boolean field of a record, nested ones
// included, into one lower-cased string.
func searchText(rec hotfix.Record) string {
	var b strings.Builder
	add := func(values ...string) {
		for _, v := range values {
			if v == "" {
				continue
			}
			b.WriteString(strings.ToLower(v))
			b.WriteByte('\n')
		}
	}

	add(rec.Name, rec.SHA256, rec.TicketID, rec.Released, rec.Type, rec.CompatibleNode, rec.Summary)
	if rec.Revert != nil {
		add(rec.Revert.Name, rec.Revert.SHA256)
	}
	add(rec.CompatibleReleases...)
	add(rec.ImpactedArea...)
	for _, group := range [][]catalog.Fix{rec.Fixes.Bugfixes, rec.Fixes.CVEFixes, rec.Fixes.SecurityFixes} {
		for _, fix := range group {
			add(fix.ID, fix.Summary, fix.Ref)
		}
	}
	add(string(rec.Severity))
	for _, ref := range rec.References {
		add(ref.Type, ref.Link)
	}
	add(rec.RequiredActions.SystemReboot, rec.RequiredActions.ProductRestart)
	add(rec.RequiredActions.ServiceRestart...)
	add(rec.Incompatible...)
	add(string(rec.ApplyStatus), rec.ApplyTimestamp, strconv.Itoa(rec.Ordinal))
	return b.String()
}

// MatchNodes returns the nodes whose non-boolean fields contain term,
// compared case-insensitively after trimming. An empty term returns all nodes.
func MatchNodes(nodes []inventory.Node, term string) []inventory.Node {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nodes
	}
	var out []inventory.Node
	for _, n := range nodes {
		for _, field := range []string{n.ID, n.IP, n.Hostname, n.Role, n.Status} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
