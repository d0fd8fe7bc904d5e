package lookupcache

import "sync"

// File is a cache held in memory and mirrored to a JSON file.
type File[V any] struct {
	path string

	mu      sync.RWMutex
	entries map[string]V
}

// OpenFile loads the cache stored at path, or starts an empty one.
func OpenFile[V any](path string) (*File[V], error) {
	entries, err := Load[V](path)
	if err != nil {
		return nil, err
	}
	return &File[V]{path: path, entries: entries}, nil
}

// Get returns the cached value for name.
func (f *File[V]) Get(name string) (V, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.entries[name]
	return v, ok
}

// Put stores v under name and saves the file.
func (f *File[V]) Put(name string, v V) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = v
	return Save(f.path, f.entries)
}

// Len returns the number of entries.
func (f *File[V]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// Path returns the backing file.
func (f *File[V]) Path() string {
	return f.path
}
