package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

// HotfixFilePrefix prefixes the per-node hotfix history file name.
const HotfixFilePrefix = "hotfix_"

// FileOptions locate the files backing a FileSource.
type FileOptions struct {
	Manifest  string
	Roster    string
	HotfixDir string
	Logger    *zap.Logger
}

// FileSource serves inventory from local files: a manifest, a YAML roster,
// and one hotfix history file per node hostname. Files are read on every call.
type FileSource struct {
	opts   FileOptions
	logger *zap.Logger
}

// NewFileSource returns a file-backed source.
func NewFileSource(opts FileOptions) *FileSource {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{opts: opts, logger: logger.Named("file-source")}
}

// Catalog reads the manifest file.
func (s *FileSource) Catalog(ctx context.Context) (catalog.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Manifest{}, err
	}
	return catalog.LoadFile(s.opts.Manifest)
}

// Nodes reads the roster file.
func (s *FileSource) Nodes(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadRoster(s.opts.Roster)
}

// NodeData resolves the node in the roster and reads its hotfix history.
// A node without a history file has no events.
func (s *FileSource) NodeData(ctx context.Context, id string) (NodeData, error) {
	nodes, err := s.Nodes(ctx)
	if err != nil {
		return NodeData{}, err
	}
	for _, n := range nodes {
		if n.ID != id {
			continue
		}
		events, err := LoadHotfixFile(filepath.Join(s.opts.HotfixDir, HotfixFilePrefix+n.Hostname))
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no hotfix history for node", zap.String("hostname", n.Hostname))
			events = []Event{}
		} else if err != nil {
			return NodeData{}, err
		}
		return NodeData{Role: n.Role, Status: n.Status, Hostname: n.Hostname, Events: events}, nil
	}
	return NodeData{}, fmt.Errorf("node %q: %w", id, ErrNotFound)
}

type rosterFile struct {
	Nodes []Node `yaml:"nodes"`
}

// LoadRoster reads a YAML roster with a top-level nodes list.
func LoadRoster(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if roster.Nodes == nil {
		roster.Nodes = []Node{}
	}
	return roster.Nodes, nil
}

type hotfixFile struct {
	Hotfixes []struct {
		Version   string `json:"version"`
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	} `json:"hotfixes"`
}

// LoadHotfixFile reads a node's hotfix history file.
func LoadHotfixFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHotfixHistory(data)
}

// ParseHotfixHistory converts a node's hotfix history into events. Entries
// whose status is "successfully" become SUCCESS, anything else FAILURE.
func ParseHotfixHistory(data []byte) ([]Event, error) {
	var file hotfixFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode hotfix history: %w", err)
	}
	events := make([]Event, 0, len(file.Hotfixes))
	for _, h := range file.Hotfixes {
		status := EventFailure
		if h.Status == "successfully" {
			status = EventSuccess
		}
		events = append(events, Event{Name: h.Version, Timestamp: h.Timestamp, Status: status})
	}
	return events, nil
}
