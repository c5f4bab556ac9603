// internal/domain/notified/set.go
package notified

import "sort"

// Set holds the identifiers of catalog items that have already been
// announced. It only ever grows within a process lifetime; the durable copy
// is the union of what was loaded at startup and everything marked since.
type Set struct {
	ids map[string]struct{}
}

func NewSet(ids ...string) *Set {
	s := &Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add marks an identifier as notified. Returns true if it was not already
// present.
func (s *Set) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the members in sorted order, so the persisted payload is stable
// across saves of the same set.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
