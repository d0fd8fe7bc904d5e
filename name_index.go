package gazetteer

// NameIndex maps normalized names to place ids and back.
//
// Both directions keep set semantics in insertion order. A single name may
// point at several ids (ambiguity is representable); deciding between them
// is up to the caller. Entries are never removed.
type NameIndex struct {
	forward  map[string]*OrderedSet // NormalizeKey(name) -> ids
	backward map[string]*OrderedSet // NormalizeKey(id) -> raw names
}

// NewNameIndex returns an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{
		forward:  make(map[string]*OrderedSet),
		backward: make(map[string]*OrderedSet),
	}
}

// Add records that name refers to targetID.
func (idx *NameIndex) Add(name, targetID string) {
	key := NormalizeKey(name)
	ids, ok := idx.forward[key]
	if !ok {
		ids = NewOrderedSet()
		idx.forward[key] = ids
	}
	ids.Add(targetID)

	rkey := NormalizeKey(targetID)
	names, ok := idx.backward[rkey]
	if !ok {
		names = NewOrderedSet()
		idx.backward[rkey] = names
	}
	names.Add(name)
}

// Lookup returns the ids registered under term's normalized key. A miss
// yields an empty result, not an error.
func (idx *NameIndex) Lookup(term string) []string {
	return idx.forward[NormalizeKey(term)].Values()
}

// LookupReverse returns the raw names that were added for targetID.
func (idx *NameIndex) LookupReverse(targetID string) []string {
	return idx.backward[NormalizeKey(targetID)].Values()
}

// Len returns the number of distinct name keys.
func (idx *NameIndex) Len() int {
	return len(idx.forward)
}

// Keys calls fn for every normalized key and its ids until fn returns false.
// Iteration order is unspecified.
func (idx *NameIndex) Keys(fn func(key string, ids []string) bool) {
	for k, ids := range idx.forward {
		if !fn(k, ids.Values()) {
			return
		}
	}
}
