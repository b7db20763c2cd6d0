package pool

import (
	"fmt"
	"sync"
)

// familyState holds one family's entries plus the bookkeeping the selector
// needs. One mutex guards both, mirroring the coarse per-entity locking in
// the teacher's internal/balancer/failure_detector.go rather than a
// mutex-per-entry design (§5's concurrency model recommends coarse locking
// over per-entry locks for this access pattern).
type familyState struct {
	mu sync.RWMutex

	entries []*Entry
	// rrIndex advances round-robin selection. Keyed by the requested model
	// name, or "" for family-only selection, since a family's candidate
	// list differs per model once notSupportedModels is applied.
	rrIndex map[string]int
}

func newFamilyState() *familyState {
	return &familyState{rrIndex: make(map[string]int)}
}

// Store is the in-memory pool state: one familyState per family, loaded
// from and periodically flushed to the on-disk document (§3).
type Store struct {
	mu       sync.RWMutex
	families map[Family]*familyState
}

// NewStore returns an empty store; call Load to populate it.
func NewStore() *Store {
	return &Store{families: make(map[Family]*familyState)}
}

// Load replaces the store's contents with the decoded document. Unknown
// family names round-trip: they are kept in-memory even though this build
// has no default check-model for them, so long as their entries carry an
// explicit checkModelName.
func (s *Store) Load(data []byte) error {
	doc, err := decodeDocument(data)
	if err != nil {
		return fmt.Errorf("pool: decode document: %w", err)
	}

	families := make(map[Family]*familyState, len(doc))
	for name, entries := range doc {
		fs := newFamilyState()
		fs.entries = entries
		families[Family(name)] = fs
	}

	s.mu.Lock()
	s.families = families
	s.mu.Unlock()
	return nil
}

// snapshotDocument copies the full store into the on-disk document shape,
// used by the persistence layer to serialize without holding the store
// lock across I/O.
func (s *Store) snapshotDocument() document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := make(document, len(s.families))
	for name, fs := range s.families {
		fs.mu.RLock()
		entries := make([]*Entry, len(fs.entries))
		copy(entries, fs.entries)
		fs.mu.RUnlock()
		doc[string(name)] = entries
	}
	return doc
}

// family returns the state for a family, creating it if absent.
func (s *Store) family(family Family) *familyState {
	s.mu.RLock()
	fs, ok := s.families[family]
	s.mu.RUnlock()
	if ok {
		return fs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fs, ok := s.families[family]; ok {
		return fs
	}
	fs = newFamilyState()
	s.families[family] = fs
	return fs
}

// familyIfExists returns the state for a family without creating it.
func (s *Store) familyIfExists(family Family) (*familyState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.families[family]
	return fs, ok
}

// Families returns the set of family names currently tracked.
func (s *Store) Families() []Family {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Family, 0, len(s.families))
	for name := range s.families {
		out = append(out, name)
	}
	return out
}

// GetPoolSnapshot returns a lock-free copy of a family's entries. Returns
// nil, false if the family is unknown.
func (s *Store) GetPoolSnapshot(family Family) ([]Snapshot, bool) {
	fs, ok := s.familyIfExists(family)
	if !ok {
		return nil, false
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]Snapshot, len(fs.entries))
	for i, e := range fs.entries {
		out[i] = snapshotOf(family, e, false)
	}
	return out, true
}

// findEntry locates an entry by UUID within a family. Caller must hold
// fs.mu (read or write).
func (fs *familyState) findEntry(uuid string) (*Entry, int) {
	for i, e := range fs.entries {
		if e.UUID == uuid {
			return e, i
		}
	}
	return nil, -1
}

// withEntry runs fn while holding the family's write lock, exposing the
// entry located by uuid. Returns false if the entry does not exist.
func (s *Store) withEntry(family Family, uuid string, fn func(e *Entry)) bool {
	fs, ok := s.familyIfExists(family)
	if !ok {
		return false
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	e, _ := fs.findEntry(uuid)
	if e == nil {
		return false
	}
	fn(e)
	return true
}
