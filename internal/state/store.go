package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/adamkadaban/hotfix-tui/internal/projection"
)

// Store guards shared application state needed by multiple Bubble Tea models.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]*Subscription
	nextSub  int
}

// Subscription delivers notifications when the store mutates.
type Subscription struct {
	id     int
	store  *Store
	events chan struct{}
}

// NewStore creates a state store seeded with default values.
func NewStore() *Store {
	return &Store{
		snapshot: Snapshot{
			ActiveView: ViewDashboard,
			Loading:    Loading{Catalog: true, NodeData: true},
		},
		subs: make(map[int]*Subscription),
	}
}

// Snapshot returns a copy of the current application state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSnapshot(s.snapshot)
}

// Update applies fn to the state tree and notifies subscribers. The active
// view is owned by the router and survives updates.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.snapshot.ActiveView
	next := cloneSnapshot(s.snapshot)
	fn(&next)
	next.ActiveView = active
	s.snapshot = next
	s.notifyLocked()
}

// SetActiveView updates the router's active view.
func (s *Store) SetActiveView(kind ViewKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.ActiveView = kind
	s.notifyLocked()
}

// ActiveView returns the currently selected view.
func (s *Store) ActiveView() ViewKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.ActiveView
}

// SetError records a user-visible error message.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = msg
	s.notifyLocked()
}

// Subscribe returns a subscription that receives a signal whenever the store mutates.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		id:     s.nextSub,
		store:  s,
		events: make(chan struct{}, 1),
	}
	s.nextSub++
	s.subs[sub.id] = sub
	return sub
}

func (s *Store) notifyLocked() {
	for _, sub := range s.subs {
		select {
		case sub.events <- struct{}{}:
		default:
		}
	}
}

func (s *Store) removeSubscription(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(sub.events)
	}
}

// Events returns a channel that receives a signal for each store mutation.
func (sub *Subscription) Events() <-chan struct{} {
	if sub == nil {
		return nil
	}
	return sub.events
}

// Close stops the subscription and releases associated resources.
func (sub *Subscription) Close() {
	if sub == nil || sub.store == nil {
		return
	}
	sub.store.removeSubscription(sub.id)
	sub.store = nil
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := src
	dst.Roster = slices.Clone(src.Roster)
	dst.NodeData.Events = slices.Clone(src.NodeData.Events)
	dst.Counters = maps.Clone(src.Counters)
	dst.Table.Rows = slices.Clone(src.Table.Rows)
	dst.Table.Facets = cloneFacets(src.Table.Facets)
	dst.Notifications.Alerts = slices.Clone(src.Notifications.Alerts)
	dst.Notifications.History = slices.Clone(src.Notifications.History)
	if src.Detail != nil {
		detail := *src.Detail
		detail.Nodes = slices.Clone(src.Detail.Nodes)
		dst.Detail = &detail
	}
	return dst
}

func cloneFacets(facets []projection.Facet) []projection.Facet {
	if facets == nil {
		return nil
	}
	out := make([]projection.Facet, len(facets))
	for i, f := range facets {
		out[i] = projection.Facet{Column: f.Column, Candidates: slices.Clone(f.Candidates)}
	}
	return out
}
