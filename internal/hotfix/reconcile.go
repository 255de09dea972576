// Package hotfix derives per-node hotfix status from the catalog and a
// node's event log.
package hotfix

import (
	"slices"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
)

// ApplyStatus is the derived install state of a hotfix on one node.
type ApplyStatus string

const (
	StatusNotAvailable ApplyStatus = "Not Available"
	StatusNotInstalled ApplyStatus = "Not Installed"
	StatusInstalled    ApplyStatus = "Installed"
	StatusReverted     ApplyStatus = "Reverted"
)

// Record is a catalog entry reconciled against a node's events.
type Record struct {
	catalog.Entry
	ApplyStatus    ApplyStatus
	ApplyTimestamp string
	// Ordinal is the entry's index in the catalog. It identifies the record
	// and gives the unsorted order.
	Ordinal  int
	Expanded bool
}

// Count is the available/installed tally for one severity.
type Count struct {
	Available int
	Installed int
}

// Counters rolls records up by severity.
type Counters map[catalog.Severity]Count

// NewCounters returns counters with every default severity present at zero.
func NewCounters() Counters {
	c := make(Counters, len(catalog.DefaultSeverities))
	for _, sev := range catalog.DefaultSeverities {
		c[sev] = Count{}
	}
	return c
}

// Result is the output of one reconciliation pass.
type Result struct {
	Records  []Record
	Counters Counters
	// Attention lists records that should raise an alert, in catalog order.
	Attention []Record
}

// Input bundles the values a reconciliation pass depends on.
type Input struct {
	Entries    []catalog.Entry
	NodeRole   string
	NodeStatus string
	Events     []inventory.Event
}

// Reconcile merges the catalog with a node's event log. It is a pure
// function of its input; counters are built from scratch on every call.
//
// The installed count moves by one per successful install event and back by
// one per successful revert event, so re-applications are counted more than
// once.
func Reconcile(in Input) Result {
	res := Result{
		Records:  make([]Record, 0, len(in.Entries)),
		Counters: NewCounters(),
	}
	online := in.NodeStatus == inventory.StatusOnline

	for idx, entry := range in.Entries {
		if !entry.AppliesTo(in.NodeRole) {
			continue
		}
		count := res.Counters[entry.Severity]
		count.Available++

		rec := Record{Entry: entry, ApplyStatus: StatusNotAvailable, Ordinal: idx}
		if online {
			rec.ApplyStatus = StatusNotInstalled
			revert := entry.RevertName()
			for _, ev := range in.Events {
				if ev.Status != inventory.EventSuccess {
					continue
				}
				switch {
				case ev.Name == entry.Name:
					count.Installed++
					if ev.Timestamp > rec.ApplyTimestamp {
						rec.ApplyStatus = StatusInstalled
						rec.ApplyTimestamp = ev.Timestamp
					}
				case revert != "" && ev.Name == revert:
					count.Installed--
					if ev.Timestamp > rec.ApplyTimestamp {
						rec.ApplyStatus = StatusReverted
						rec.ApplyTimestamp = ev.Timestamp
					}
				}
			}
		}
		res.Counters[entry.Severity] = count
		res.Records = append(res.Records, rec)
		if NeedsAttention(rec) {
			res.Attention = append(res.Attention, rec)
		}
	}
	return res
}

// NeedsAttention reports whether a record should raise an alert.
func NeedsAttention(rec Record) bool {
	return rec.ApplyStatus == StatusNotInstalled && rec.Severity != catalog.SeverityOptional
}

// Severities returns the counter keys in display order: any severity outside
// the defaults first in alphabetical order, then the defaults.
func (c Counters) Severities() []catalog.Severity {
	known := make(map[catalog.Severity]bool, len(catalog.DefaultSeverities))
	for _, sev := range catalog.DefaultSeverities {
		known[sev] = true
	}
	var extra []catalog.Severity
	for sev := range c {
		if !known[sev] {
			extra = append(extra, sev)
		}
	}
	slices.Sort(extra)
	return append(extra, catalog.DefaultSeverities...)
}

// Tone classifies a record for row coloring.
type Tone string

const (
	ToneDefault                 Tone = "default"
	ToneInstalled               Tone = "installed"
	ToneImportantNotInstalled   Tone = "important-not-installed"
	ToneRecommendedNotInstalled Tone = "recommended-not-installed"
)

// RowTone returns the color class for a record.
func RowTone(rec Record) Tone {
	switch rec.ApplyStatus {
	case StatusInstalled:
		return ToneInstalled
	case StatusNotInstalled:
		switch rec.Severity {
		case catalog.SeverityImportant:
			return ToneImportantNotInstalled
		case catalog.SeverityRecommended:
			return ToneRecommendedNotInstalled
		}
	}
	return ToneDefault
}
