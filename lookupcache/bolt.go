package lookupcache

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

// DB is a bbolt database holding any number of named caches.
type DB struct {
	db *bolt.DB
}

// OpenDB opens (or creates) the database at path.
func OpenDB(path string) (*DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database. Bolt caches opened on it stop working.
func (d *DB) Close() error {
	return d.db.Close()
}

// Bolt is a cache stored as one bucket of a DB. Values are JSON encoded.
type Bolt[V any] struct {
	db     *bolt.DB
	bucket []byte
}

// NewBolt returns the cache called name, creating its bucket if needed.
func NewBolt[V any](d *DB, name string) (*Bolt[V], error) {
	bucket := []byte(name)
	err := d.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket %s: %w", name, err)
	}
	return &Bolt[V]{db: d.db, bucket: bucket}, nil
}

// Get returns the cached value for name. Undecodable entries count as misses.
func (b *Bolt[V]) Get(name string) (V, bool) {
	var (
		v     V
		found bool
	)
	_ = b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(b.bucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		found = true
		return nil
	})
	return v, found
}

// Put stores v under name.
func (b *Bolt[V]) Put(name string, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(name), data)
	})
}

// All returns every entry of the cache.
func (b *Bolt[V]) All() (map[string]V, error) {
	out := make(map[string]V)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, data []byte) error {
			var v V
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			out[string(k)] = v
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Len returns the number of entries.
func (b *Bolt[V]) Len() int {
	n := 0
	_ = b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(b.bucket).Stats().KeyN
		return nil
	})
	return n
}

// Import copies entries into the cache in one transaction, e.g. to move a
// JSON side file into the database.
func (b *Bolt[V]) Import(entries map[string]V) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		for name, v := range entries {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", name, err)
			}
			if err := bk.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
}
