// Package errstore keeps the per-path error lists of a form.
package errstore

import (
	"maps"
	"slices"
	"sort"
)

// TypeValidate marks entries produced by validators. Any other Type is a
// caller-defined kind (setError) and survives re-validation.
const TypeValidate = "validate"

// TypeCustom is the kind used when a caller sets a bare message.
const TypeCustom = "custom"

// Entry is one error attached to a path.
type Entry struct {
	Type    string         `json:"type" yaml:"type"`
	Message string         `json:"message" yaml:"message"`
	Params  map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	// Suppressed entries come from the automatic registration pass and are
	// hidden from callers until the field sees a real interaction.
	Suppressed bool `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// Store maps canonical paths to error lists. A path with no errors has no
// key at all.
type Store struct {
	entries map[string][]Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string][]Entry)}
}

// All returns a copy of every entry at key, suppressed ones included.
func (s *Store) All(key string) []Entry {
	return slices.Clone(s.entries[key])
}

// Visible returns copies of the non-suppressed entries at key, or nil.
func (s *Store) Visible(key string) []Entry {
	var out []Entry
	for _, e := range s.entries[key] {
		if !e.Suppressed {
			e.Params = maps.Clone(e.Params)
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether key has any entry.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// HasType reports whether key has an entry of the given type.
func (s *Store) HasType(key, typ string) bool {
	for _, e := range s.entries[key] {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// Add appends e unless an entry with the same type and message exists.
func (s *Store) Add(key string, e Entry) {
	for _, existing := range s.entries[key] {
		if existing.Type == e.Type && existing.Message == e.Message {
			return
		}
	}
	s.entries[key] = append(s.entries[key], e)
}

// ReplaceType swaps all entries of type typ at key for entries, keeping
// entries of other types in front.
func (s *Store) ReplaceType(key, typ string, entries []Entry) {
	kept := s.without(key, typ)
	kept = append(kept, entries...)
	s.set(key, kept)
}

// Clear removes entries at key. With no types given every entry goes;
// otherwise only entries of the listed types. It reports whether anything
// was removed.
func (s *Store) Clear(key string, types ...string) bool {
	before := len(s.entries[key])
	if len(types) == 0 {
		delete(s.entries, key)
		return before > 0
	}
	kept := s.entries[key]
	for _, typ := range types {
		kept = filterOut(kept, typ)
	}
	s.set(key, kept)
	return len(kept) != before
}

// ClearAll empties the store and returns the keys that had entries, sorted.
func (s *Store) ClearAll() []string {
	keys := s.Keys()
	s.entries = make(map[string][]Entry)
	return keys
}

// Reveal clears the suppressed flag on every entry at key and reports
// whether any entry changed.
func (s *Store) Reveal(key string) bool {
	changed := false
	list := s.entries[key]
	for i := range list {
		if list[i].Suppressed {
			list[i].Suppressed = false
			changed = true
		}
	}
	return changed
}

// Keys returns every key with entries, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VisibleMap returns every key with at least one visible entry.
func (s *Store) VisibleMap() map[string][]Entry {
	out := make(map[string][]Entry)
	for k := range s.entries {
		if visible := s.Visible(k); len(visible) > 0 {
			out[k] = visible
		}
	}
	return out
}

// Len returns the number of keys with entries.
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) set(key string, entries []Entry) {
	if len(entries) == 0 {
		delete(s.entries, key)
		return
	}
	s.entries[key] = entries
}

func (s *Store) without(key, typ string) []Entry {
	return filterOut(slices.Clone(s.entries[key]), typ)
}

func filterOut(entries []Entry, typ string) []Entry {
	var kept []Entry
	for _, e := range entries {
		if e.Type != typ {
			kept = append(kept, e)
		}
	}
	return kept
}
