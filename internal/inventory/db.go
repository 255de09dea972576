package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

// ManifestRecord stores one imported catalog manifest.
type ManifestRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Generated  string `gorm:"index;size:64"`
	Body       string `gorm:"type:text"`
	ImportedAt time.Time
}

// NodeRecord stores one roster node.
type NodeRecord struct {
	ID              uint   `gorm:"primaryKey"`
	NodeID          string `gorm:"uniqueIndex;size:255"`
	Position        int    `gorm:"index"`
	IP              string `gorm:"size:64"`
	Hostname        string `gorm:"index;size:255"`
	Role            string `gorm:"size:16"`
	Status          string `gorm:"size:16"`
	HAEnabled       bool
	MasterCandidate bool
}

// EventRecord stores one hotfix event of a node.
type EventRecord struct {
	ID        uint   `gorm:"primaryKey"`
	NodeID    string `gorm:"index;size:255"`
	Seq       int
	Name      string `gorm:"index;size:255"`
	Timestamp string `gorm:"size:64"`
	Status    string `gorm:"size:16"`
}

// DBSource serves inventory from a SQLite database.
type DBSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenDB opens (creating if needed) the inventory database at path.
func OpenDB(path string, log *zap.Logger) (*DBSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open inventory db: %w", err)
	}
	if err := db.AutoMigrate(&ManifestRecord{}, &NodeRecord{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("migrate inventory db: %w", err)
	}
	return &DBSource{db: db, logger: log.Named("db-source")}, nil
}

// Close releases the underlying connection pool.
func (s *DBSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Catalog returns the most recently imported manifest.
func (s *DBSource) Catalog(ctx context.Context) (catalog.Manifest, error) {
	var rec ManifestRecord
	err := s.db.WithContext(ctx).Order("id desc").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Manifest{}, fmt.Errorf("manifest: %w", ErrNotFound)
	}
	if err != nil {
		return catalog.Manifest{}, fmt.Errorf("load manifest: %w", err)
	}
	return catalog.Decode([]byte(rec.Body))
}

// Nodes returns the roster in import order.
func (s *DBSource) Nodes(ctx context.Context) ([]Node, error) {
	var recs []NodeRecord
	if err := s.db.WithContext(ctx).Order("position asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	nodes := make([]Node, len(recs))
	for i, r := range recs {
		nodes[i] = r.node()
	}
	return nodes, nil
}

// NodeData returns a node and its events in recorded order.
func (s *DBSource) NodeData(ctx context.Context, id string) (NodeData, error) {
	db := s.db.WithContext(ctx)
	var rec NodeRecord
	err := db.Where("node_id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NodeData{}, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return NodeData{}, fmt.Errorf("load node: %w", err)
	}
	var evs []EventRecord
	if err := db.Where("node_id = ?", id).Order("seq asc").Find(&evs).Error; err != nil {
		return NodeData{}, fmt.Errorf("load events: %w", err)
	}
	events := make([]Event, len(evs))
	for i, e := range evs {
		events[i] = Event{Name: e.Name, Timestamp: e.Timestamp, Status: e.Status}
	}
	return NodeData{Role: rec.Role, Status: rec.Status, Hostname: rec.Hostname, Events: events}, nil
}

// SaveManifest stores a manifest as the current catalog.
func (s *DBSource) SaveManifest(ctx context.Context, m catalog.Manifest) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	rec := ManifestRecord{Generated: m.Metadata.Generated, Body: string(body), ImportedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// ReplaceNodes replaces the roster and every node's events in one transaction.
func (s *DBSource) ReplaceNodes(ctx context.Context, nodes []Node, events map[string][]Event) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EventRecord{}).Error; err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&NodeRecord{}).Error; err != nil {
			return fmt.Errorf("clear nodes: %w", err)
		}
		for pos, n := range nodes {
			rec := nodeRecord(n, pos)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("save node %q: %w", n.ID, err)
			}
			evs := events[n.ID]
			if len(evs) == 0 {
				continue
			}
			recs := make([]EventRecord, len(evs))
			for i, e := range evs {
				recs[i] = EventRecord{NodeID: n.ID, Seq: i, Name: e.Name, Timestamp: e.Timestamp, Status: e.Status}
			}
			if err := tx.Create(&recs).Error; err != nil {
				return fmt.Errorf("save events for %q: %w", n.ID, err)
			}
		}
		return nil
	})
}

// ImportSummary counts what Import copied.
type ImportSummary struct {
	Entries int
	Nodes   int
	Events  int
}

// Import copies the catalog, roster and every node's events from src.
func (s *DBSource) Import(ctx context.Context, src Source) (ImportSummary, error) {
	var sum ImportSummary
	manifest, err := src.Catalog(ctx)
	if err != nil {
		return sum, fmt.Errorf("read catalog: %w", err)
	}
	nodes, err := src.Nodes(ctx)
	if err != nil {
		return sum, fmt.Errorf("read nodes: %w", err)
	}
	events := make(map[string][]Event, len(nodes))
	for _, n := range nodes {
		data, err := src.NodeData(ctx, n.ID)
		if err != nil {
			return sum, fmt.Errorf("read node %q: %w", n.ID, err)
		}
		events[n.ID] = data.Events
		sum.Events += len(data.Events)
	}
	if err := s.SaveManifest(ctx, manifest); err != nil {
		return sum, err
	}
	if err := s.ReplaceNodes(ctx, nodes, events); err != nil {
		return sum, err
	}
	sum.Entries = len(manifest.Data)
	sum.Nodes = len(nodes)
	s.logger.Info("inventory imported", zap.Int("entries", sum.Entries), zap.Int("nodes", sum.Nodes), zap.Int("events", sum.Events))
	return sum, nil
}

func nodeRecord(n Node, pos int) NodeRecord {
	return NodeRecord{
		NodeID:          n.ID,
		Position:        pos,
		IP:              n.IP,
		Hostname:        n.Hostname,
		Role:            n.Role,
		Status:          n.Status,
		HAEnabled:       n.HAEnabled,
		MasterCandidate: n.MasterCandidate,
	}
}

func (r NodeRecord) node() Node {
	return Node{
		ID:              r.NodeID,
		IP:              r.IP,
		Hostname:        r.Hostname,
		Role:            r.Role,
		Status:          r.Status,
		HAEnabled:       r.HAEnabled,
		MasterCandidate: r.MasterCandidate,
	}
}
