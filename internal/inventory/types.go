package inventory

import (
	"context"
	"errors"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

// Node status and role values reported by the backend.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"

	RoleMaster = "MASTER"
	RoleMember = "MEMBER"
)

// Event status values.
const (
	EventSuccess = "SUCCESS"
	EventFailure = "FAILURE"
)

var (
	// ErrUnauthorized is returned when the backend rejects the session.
	ErrUnauthorized = errors.New("inventory: unauthorized")
	// ErrNotFound is returned for unknown node ids.
	ErrNotFound = errors.New("inventory: not found")
)

// Node is one entry of the managed node roster.
type Node struct {
	ID              string `json:"unique_id" yaml:"id"`
	IP              string `json:"ip" yaml:"ip"`
	Hostname        string `json:"hostname" yaml:"hostname"`
	Role            string `json:"role" yaml:"role"`
	Status          string `json:"status" yaml:"status"`
	HAEnabled       bool   `json:"ha_enable" yaml:"ha_enable"`
	MasterCandidate bool   `json:"master_candidate" yaml:"master_candidate"`
}

// Event is a single recorded install or revert attempt on a node.
type Event struct {
	Name      string `json:"name" yaml:"name"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Status    string `json:"status" yaml:"status"`
}

// NodeData is the per-node payload used for reconciliation.
type NodeData struct {
	Role     string  `json:"role"`
	Status   string  `json:"status"`
	Hostname string  `json:"hostname"`
	Events   []Event `json:"hotfixes"`
}

// Source fetches the inputs of a dashboard session.
type Source interface {
	Catalog(ctx context.Context) (catalog.Manifest, error)
	Nodes(ctx context.Context) ([]Node, error)
	NodeData(ctx context.Context, id string) (NodeData, error)
}

// DefaultNode picks the node selected when a roster first loads: the first
// master, else the first node. ok is false for an empty roster.
func DefaultNode(nodes []Node) (Node, bool) {
	for _, n := range nodes {
		if n.Role == RoleMaster {
			return n, true
		}
	}
	if len(nodes) == 0 {
		return Node{}, false
	}
	return nodes[0], true
}
