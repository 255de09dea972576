// Package session owns the state of one dashboard session: the catalog, the
// selected node and its event log, the reconciled records with their view
// state, and the notification planes. It gates reconciliation on both fetches
// and publishes every change to a state.Store.
//
// A Session is not safe for concurrent use. All calls happen on the UI loop.
package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
	"github.com/adamkadaban/hotfix-tui/internal/state"
)

// FetchRequest identifies one node-data fetch. Only the response to the most
// recent request is applied.
type FetchRequest struct {
	Gen    uint64
	NodeID string
}

// Options configure a Session.
type Options struct {
	Store     *state.Store
	Scheduler notify.Options
	Logger    *zap.Logger
}

// Session is the core facade used by the presentation shell.
type Session struct {
	store  *state.Store
	logger *zap.Logger

	catalog  *catalog.Store
	roster   []inventory.Node
	selected inventory.Node
	nodeData inventory.NodeData
	// nodeReady is set once node data for the current selection arrived.
	nodeReady bool
	gen       uint64

	engine    *projection.Engine
	scheduler *notify.Scheduler
	counters  hotfix.Counters
	detail    *state.Detail

	authRequired bool
	lastErr      string

	listeners map[int]func(notify.Event)
	nextSub   int
}

// New returns an empty session waiting for its first fetches.
func New(opts Options) *Session {
	if opts.Store == nil {
		opts.Store = state.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = opts.Logger.Named("notify")
	}
	s := &Session{
		store:     opts.Store,
		logger:    opts.Logger.Named("session"),
		catalog:   catalog.NewStore(),
		engine:    projection.New(),
		scheduler: notify.NewScheduler(opts.Scheduler),
		counters:  hotfix.NewCounters(),
		listeners: make(map[int]func(notify.Event)),
	}
	s.publish()
	return s
}

// Store returns the store the session publishes to.
func (s *Session) Store() *state.Store { return s.store }

// ApplyCatalog records the result of the catalog fetch. The catalog is kept
// for the whole session; later successful fetches are ignored.
func (s *Session) ApplyCatalog(m catalog.Manifest, err error) []notify.Timer {
	defer s.publish()
	if err != nil {
		s.fail("catalog fetch failed", err)
		return nil
	}
	if !s.catalog.Set(m) {
		s.logger.Debug("catalog already loaded")
		return nil
	}
	s.logger.Info("catalog loaded",
		zap.Int("entries", len(m.Data)),
		zap.String("generated", m.Metadata.Generated),
	)
	return s.reconcile()
}

// ApplyRoster records the node roster and selects the default node. The
// returned request must be fetched when ok is true.
func (s *Session) ApplyRoster(nodes []inventory.Node, err error) (FetchRequest, bool) {
	if err != nil {
		s.fail("roster fetch failed", err)
		s.publish()
		return FetchRequest{}, false
	}
	s.roster = append([]inventory.Node(nil), nodes...)
	node, ok := inventory.DefaultNode(s.roster)
	if !ok {
		s.logger.Warn("roster is empty")
		s.publish()
		return FetchRequest{}, false
	}
	s.logger.Info("roster loaded", zap.Int("nodes", len(nodes)), zap.String("default", node.ID))
	return s.SelectNode(node.ID)
}

// SelectNode makes id the inspected node and returns the node-data request
// to issue. Unknown ids and the already loaded node are ignored. Switching to
// another host clears the alert and history planes.
func (s *Session) SelectNode(id string) (FetchRequest, bool) {
	defer s.publish()
	node, ok := s.findNode(id)
	if !ok {
		s.logger.Warn("select unknown node", zap.String("node", id))
		return FetchRequest{}, false
	}
	if id == s.selected.ID && s.nodeReady {
		s.logger.Debug("node already selected", zap.String("node", id))
		return FetchRequest{}, false
	}
	s.scheduler.SwitchTag(node.Hostname)
	s.gen++
	s.selected = node
	s.nodeReady = false
	s.nodeData = inventory.NodeData{}
	s.engine.ClearAll()
	s.logger.Debug("node selected", zap.String("node", id), zap.Uint64("gen", s.gen))
	return FetchRequest{Gen: s.gen, NodeID: node.ID}, true
}

// ApplyNodeData records the result of a node-data fetch. Responses to
// superseded requests are dropped.
func (s *Session) ApplyNodeData(req FetchRequest, data inventory.NodeData, err error) []notify.Timer {
	if req.Gen != s.gen {
		s.logger.Debug("dropping stale node data",
			zap.String("node", req.NodeID),
			zap.Uint64("gen", req.Gen),
			zap.Uint64("current", s.gen),
		)
		return nil
	}
	defer s.publish()
	if err != nil {
		s.fail("node data fetch failed", err, zap.String("node", req.NodeID))
		return nil
	}
	s.nodeData = data
	s.nodeReady = true
	s.lastErr = ""
	return s.reconcile()
}

// Reload forgets everything fetched so the caller can issue a fresh set of
// fetches, as after signing in again.
func (s *Session) Reload() {
	s.reset()
	s.authRequired = false
	s.lastErr = ""
	s.publish()
}

func (s *Session) reconcile() []notify.Timer {
	if !s.catalog.Ready() || !s.nodeReady {
		return nil
	}
	res := hotfix.Reconcile(hotfix.Input{
		Entries:    s.catalog.Entries(),
		NodeRole:   s.nodeData.Role,
		NodeStatus: s.nodeData.Status,
		Events:     s.nodeData.Events,
	})
	s.counters = res.Counters
	s.engine.SetRecords(res.Records)
	s.logger.Info("reconciled",
		zap.String("node", s.selected.ID),
		zap.Int("records", len(res.Records)),
		zap.Int("attention", len(res.Attention)),
	)

	tag := s.nodeData.Hostname
	if tag == "" {
		tag = s.selected.Hostname
	}
	var timers []notify.Timer
	for _, rec := range res.Attention {
		ev := notify.HotfixAlert(rec, tag)
		out := s.scheduler.Submit(ev)
		timers = append(timers, out.Timers...)
		s.emit(ev)
	}
	return timers
}

// Projection returns the records currently displayed.
func (s *Session) Projection() []hotfix.Record { return s.engine.Projection() }

// Counters returns the severity roll-up of the last reconciliation.
func (s *Session) Counters() hotfix.Counters { return s.counters }

// Selected returns the inspected node.
func (s *Session) Selected() inventory.Node { return s.selected }

// OnFilterChange toggles one filter candidate.
func (s *Session) OnFilterChange(col projection.Column, value string, selected bool) bool {
	defer s.publish()
	return s.engine.OnFilterChange(col, value, selected)
}

// OnSearch applies a search term.
func (s *Session) OnSearch(term string) {
	s.engine.OnSearch(term)
	s.publish()
}

// OnSort advances the sort cycle of col.
func (s *Session) OnSort(col projection.Column) {
	s.engine.OnSort(col)
	s.publish()
}

// ClearAll resets filter, search, sort and expansion.
func (s *Session) ClearAll() {
	s.engine.ClearAll()
	s.publish()
}

// ToggleExpand flips the expanded flag of a displayed record.
func (s *Session) ToggleExpand(ordinal int) bool {
	defer s.publish()
	return s.engine.ToggleExpand(ordinal)
}

// OnNotification registers fn for every hotfix alert raised by the session.
// The returned func unregisters it.
func (s *Session) OnNotification(fn func(notify.Event)) func() {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Session) emit(ev notify.Event) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// FireTimer runs a scheduler timer and returns its follow-ups.
func (s *Session) FireTimer(t notify.Timer) []notify.Timer {
	defer s.publish()
	return s.scheduler.Fire(t)
}

// DismissAlert removes an alert from the alert or history plane.
func (s *Session) DismissAlert(id int) bool {
	defer s.publish()
	return s.scheduler.Dismiss(id)
}

// PauseAlert holds a visible alert on screen.
func (s *Session) PauseAlert(id int) bool {
	defer s.publish()
	return s.scheduler.Pause(id)
}

// ResumeAlert restarts a paused alert's countdown.
func (s *Session) ResumeAlert(id int) []notify.Timer {
	defer s.publish()
	return s.scheduler.Resume(id)
}

// ActivateAlert opens the detail view for the alert's hotfix.
func (s *Session) ActivateAlert(id int) bool {
	defer s.publish()
	child, ok := s.scheduler.Activate(id)
	if !ok {
		return false
	}
	out := s.scheduler.Submit(child)
	if out.Detail == nil {
		return false
	}
	s.openDetail(*out.Detail)
	return true
}

// OpenDetail opens the detail view for a displayed record.
func (s *Session) OpenDetail(ordinal int) bool {
	defer s.publish()
	for _, rec := range s.engine.Records() {
		if rec.Ordinal == ordinal {
			s.openDetail(rec)
			return true
		}
	}
	return false
}

// CloseDetail closes the detail view.
func (s *Session) CloseDetail() {
	s.detail = nil
	s.publish()
}

func (s *Session) openDetail(rec hotfix.Record) {
	s.detail = &state.Detail{Record: rec, Nodes: CompatibleNodes(rec.Entry, s.roster)}
}

// CompatibleNodes lists the roster nodes an entry applies to.
func CompatibleNodes(entry catalog.Entry, roster []inventory.Node) []inventory.Node {
	out := make([]inventory.Node, 0, len(roster))
	for _, node := range roster {
		if entry.AppliesTo(node.Role) {
			out = append(out, node)
		}
	}
	return out
}

// OpenPanel shows the notification history and clears the alert plane.
func (s *Session) OpenPanel() {
	s.scheduler.OpenPanel()
	s.publish()
}

// ClosePanel hides the notification history.
func (s *Session) ClosePanel() {
	s.scheduler.ClosePanel()
	s.publish()
}

// ClearHistory empties the notification history.
func (s *Session) ClearHistory() {
	s.scheduler.ClearHistory()
	s.publish()
}

// AuthRequired reports whether the backend rejected the session.
func (s *Session) AuthRequired() bool { return s.authRequired }

func (s *Session) fail(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, inventory.ErrUnauthorized) {
		s.logger.Warn("session rejected by backend", fields...)
		s.reset()
		s.authRequired = true
		s.lastErr = "login required"
		return
	}
	s.logger.Error(msg, fields...)
	s.lastErr = err.Error()
}

// reset clears everything fetched during the session. In-flight node-data
// responses are invalidated.
func (s *Session) reset() {
	s.gen++
	s.catalog.Reset()
	s.roster = nil
	s.selected = inventory.Node{}
	s.nodeData = inventory.NodeData{}
	s.nodeReady = false
	s.engine.SetRecords(nil)
	s.scheduler.Reset()
	s.counters = hotfix.NewCounters()
	s.detail = nil
}

func (s *Session) findNode(id string) (inventory.Node, bool) {
	for _, node := range s.roster {
		if node.ID == id {
			return node, true
		}
	}
	return inventory.Node{}, false
}

func (s *Session) publish() {
	col, dir := s.engine.Sort()
	var detail *state.Detail
	if s.detail != nil {
		d := *s.detail
		detail = &d
	}
	s.store.Update(func(snap *state.Snapshot) {
		snap.Roster = s.roster
		snap.Selected = s.selected
		snap.NodeData = s.nodeData
		snap.Metadata = s.catalog.Metadata()
		snap.Loading = state.Loading{Catalog: !s.catalog.Ready(), NodeData: !s.nodeReady}
		snap.Counters = s.counters
		snap.Table = state.Table{
			Rows:      s.engine.Projection(),
			Total:     s.engine.Total(),
			Facets:    s.engine.Facets(),
			Search:    s.engine.SearchTerm(),
			SortBy:    col,
			SortDir:   dir,
			Filtering: s.engine.FilterActive(),
		}
		snap.Notifications = state.Notifications{
			Alerts:    s.scheduler.Visible(),
			History:   s.scheduler.History(),
			Pending:   s.scheduler.Pending(),
			PanelOpen: s.scheduler.PanelOpen(),
		}
		snap.Detail = detail
		snap.AuthRequired = s.authRequired
		snap.LastError = s.lastErr
	})
}
