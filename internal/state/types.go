package state

import (
	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
)

// ViewKind identifies a top-level view inside the TUI router.
type ViewKind string

const (
	ViewDashboard     ViewKind = "dashboard"
	ViewHotfixes      ViewKind = "hotfixes"
	ViewNodes         ViewKind = "nodes"
	ViewNotifications ViewKind = "notifications"
)

// DefaultViewOrder drives the tab navigation order across the application.
var DefaultViewOrder = []ViewKind{
	ViewDashboard,
	ViewHotfixes,
	ViewNodes,
	ViewNotifications,
}

// Loading tracks the two fetches that gate reconciliation.
type Loading struct {
	Catalog  bool
	NodeData bool
}

// Busy reports whether either fetch is still outstanding.
func (l Loading) Busy() bool { return l.Catalog || l.NodeData }

// Table is the displayed projection of reconciled records.
type Table struct {
	Rows      []hotfix.Record
	Total     int
	Facets    []projection.Facet
	Search    string
	SortBy    projection.Column
	SortDir   projection.Direction
	Filtering bool
}

// Notifications mirrors the alert and history planes.
type Notifications struct {
	Alerts    []notify.Alert
	History   []notify.Alert
	Pending   int
	PanelOpen bool
}

// Detail is the open hotfix detail modal.
type Detail struct {
	Record hotfix.Record
	Nodes  []inventory.Node
}

// Snapshot is a threadsafe copy of the application's state tree.
type Snapshot struct {
	ActiveView    ViewKind
	Roster        []inventory.Node
	Selected      inventory.Node
	NodeData      inventory.NodeData
	Metadata      catalog.Metadata
	Loading       Loading
	Counters      hotfix.Counters
	Table         Table
	Notifications Notifications
	Detail        *Detail
	AuthRequired  bool
	LastError     string
}
