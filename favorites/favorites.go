// Package favorites keeps the set of user-pinned projects and persists it
// through a Store.
package favorites

import (
	"fmt"
	"sort"
)

// StorageKey is the fixed key the favorite set is stored under.
const StorageKey = "favorites"

// Store persists the favorite set. Save always overwrites the full set.
type Store interface {
	Load() (Set, error)
	Save(set Set) error
}

// Set is a set of project names.
type Set map[string]bool

// NewSet builds a set from names, dropping duplicates and empty names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = true
		}
	}
	return s
}

// Has reports membership.
func (s Set) Has(name string) bool {
	return s[name]
}

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, ok := range s {
		if ok {
			n++
		}
	}
	return n
}

// Names returns the members sorted by name.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n, ok := range s {
		if ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	return NewSet(s.Names()...)
}

// Toggled returns a copy of the set with name's membership flipped.
func (s Set) Toggled(name string) Set {
	next := s.Clone()
	if next[name] {
		delete(next, name)
	} else {
		next[name] = true
	}
	return next
}

// Toggle flips name in current, persists the resulting set in full and
// returns it. current is left untouched, also when saving fails.
func Toggle(store Store, current Set, name string) (Set, error) {
	if name == "" {
		return current, fmt.Errorf("favorite name cannot be empty")
	}

	next := current.Toggled(name)
	if err := store.Save(next); err != nil {
		return current, fmt.Errorf("failed to save favorites: %w", err)
	}
	return next, nil
}

// MemoryStore keeps the set in memory. Useful for tests and for sessions
// that should not persist anything.
type MemoryStore struct {
	set Set
}

// NewMemoryStore returns a store seeded with names.
func NewMemoryStore(names ...string) *MemoryStore {
	return &MemoryStore{set: NewSet(names...)}
}

// Load returns a copy of the stored set.
func (m *MemoryStore) Load() (Set, error) {
	return m.set.Clone(), nil
}

// Save replaces the stored set.
func (m *MemoryStore) Save(set Set) error {
	m.set = set.Clone()
	return nil
}
