package catalog

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entry ID does not resolve to a live entry.
// With stable IDs this only happens after a delete, so callers treat it as a
// reconciliation signal, not a user error.
var ErrNotFound = errors.New("catalog: entry not found")

// Store owns the authoritative entry list. Order matters: it is the document
// order, with admin-added entries prepended like the original database did.
type Store struct {
	entries []*Entry
	byID    map[uint64]*Entry
	nextID  uint64
}

func NewStore() *Store {
	return &Store{byID: make(map[uint64]*Entry)}
}

// Load replaces the store contents with the given document, assigning a fresh
// identity to every entry and recomputing derived sizes.
func (s *Store) Load(doc []byte) error {
	entries, err := DecodeDocument(doc)
	if err != nil {
		return err
	}

	s.entries = entries
	s.byID = make(map[uint64]*Entry, len(entries))
	for _, e := range entries {
		s.nextID++
		e.ID = s.nextID
		s.byID[e.ID] = e
	}
	return nil
}

// Entries returns the authoritative list. Callers must not reorder it.
func (s *Store) Entries() []*Entry {
	return s.entries
}

func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) Get(id uint64) (*Entry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Filter returns the entries whose title contains the query, case-folded,
// preserving authoritative order. A query that trims to empty returns the
// authoritative list itself.
func (s *Store) Filter(query string) []*Entry {
	if strings.TrimSpace(query) == "" {
		return s.entries
	}

	q := strings.ToLower(query)
	var out []*Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Title), q) {
			out = append(out, e)
		}
	}
	return out
}

// Add prepends a new entry (newest first, as the admin panel inserts) and
// assigns its identity. The given entry is normalized in place.
func (s *Store) Add(e *Entry) *Entry {
	e.normalize()
	s.nextID++
	e.ID = s.nextID
	s.entries = append([]*Entry{e}, s.entries...)
	s.byID[e.ID] = e
	return e
}

// Update replaces the stored entry's content in place, keeping its identity
// and position.
func (s *Store) Update(id uint64, updated *Entry) error {
	e, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	e.Title = updated.Title
	e.BannerURL = updated.BannerURL
	e.SystemRequirements = updated.SystemRequirements
	e.GameInfo = updated.GameInfo
	e.normalize()
	return nil
}

// Remove deletes the entry. Selection state referencing the ID becomes
// dangling and is purged lazily by plan.Plan.
func (s *Store) Remove(id uint64) error {
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}

	delete(s.byID, id)
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Serialize produces the persistable catalog document.
func (s *Store) Serialize() ([]byte, error) {
	return EncodeDocument(s.entries)
}
