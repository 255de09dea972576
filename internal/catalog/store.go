package catalog

// Store holds the catalog fetched once per session. Entries are never
// mutated after Set; Entries hands out the same backing slice, so callers
// must treat it as read-only.
type Store struct {
	manifest Manifest
	ready    bool
}

// NewStore returns an empty, not-yet-ready catalog store.
func NewStore() *Store {
	return &Store{}
}

// Set records the fetched manifest and marks the store ready. Subsequent
// calls are ignored: the catalog is immutable for the lifetime of a session.
func (s *Store) Set(manifest Manifest) bool {
	if s.ready {
		return false
	}
	entries := make([]Entry, len(manifest.Data))
	copy(entries, manifest.Data)
	manifest.Data = entries
	s.manifest = manifest
	s.ready = true
	return true
}

// Ready reports whether the catalog fetch has completed.
func (s *Store) Ready() bool { return s.ready }

// Entries returns the catalog entries in manifest order.
func (s *Store) Entries() []Entry { return s.manifest.Data }

// Metadata returns the manifest metadata.
func (s *Store) Metadata() Metadata { return s.manifest.Metadata }

// Reset discards the catalog, as on session end.
func (s *Store) Reset() {
	s.manifest = Manifest{}
	s.ready = false
}
