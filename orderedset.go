package gazetteer

import (
	"slices"
	"strings"
)

// OrderedSet is an insertion-ordered, duplicate-free collection of strings.
// Names, types and index value-sets use it so that output order is stable.
//
// The zero value is not usable; call NewOrderedSet.
type OrderedSet struct {
	items []string
	seen  map[string]struct{}
	fold  bool
}

// NewOrderedSet returns an empty set that compares values exactly.
func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{seen: make(map[string]struct{}, len(values))}
	s.AddAll(values...)
	return s
}

// NewFoldedSet returns an empty set that treats values equal when their
// lower-cased forms match ("Village" and "village"). The first spelling wins.
func NewFoldedSet(values ...string) *OrderedSet {
	s := &OrderedSet{seen: make(map[string]struct{}, len(values)), fold: true}
	s.AddAll(values...)
	return s
}

func (s *OrderedSet) key(v string) string {
	if s.fold {
		return toLower(v)
	}
	return v
}

// Add inserts v and reports whether it was not already present.
func (s *OrderedSet) Add(v string) bool {
	k := s.key(v)
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// AddAll inserts every value and returns those that were new, in order.
func (s *OrderedSet) AddAll(values ...string) []string {
	var added []string
	for _, v := range values {
		if s.Add(v) {
			added = append(added, v)
		}
	}
	return added
}

// Contains reports whether v is in the set.
func (s *OrderedSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[s.key(v)]
	return ok
}

// Len returns the number of values.
func (s *OrderedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns a copy of the values in insertion order.
func (s *OrderedSet) Values() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

// Missing returns the values of other that s does not contain, in other's order.
func (s *OrderedSet) Missing(other *OrderedSet) []string {
	var out []string
	for _, v := range other.Values() {
		if !s.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// Equal reports whether both sets hold the same values in the same order.
func (s *OrderedSet) Equal(other *OrderedSet) bool {
	return slices.Equal(s.Values(), other.Values())
}

// Clone returns an independent copy.
func (s *OrderedSet) Clone() *OrderedSet {
	if s == nil {
		return nil
	}
	c := &OrderedSet{
		items: slices.Clone(s.items),
		seen:  make(map[string]struct{}, len(s.seen)),
		fold:  s.fold,
	}
	for k := range s.seen {
		c.seen[k] = struct{}{}
	}
	return c
}

func (s *OrderedSet) String() string {
	return strings.Join(s.Values(), ", ")
}
