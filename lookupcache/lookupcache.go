// Package lookupcache remembers accepted suggestions between runs so that a
// name looked up once is never sent to the remote service again.
//
// Two stores are provided: File keeps one JSON object per cache on disk and
// rewrites it after every Put, Bolt keeps every cache as a bucket of a single
// bbolt database.
package lookupcache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	json "github.com/goccy/go-json"
)

// Load reads a JSON object of name -> value. A missing file is an empty cache.
func Load[V any](path string) (map[string]V, error) {
	m := make(map[string]V)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding cache %s: %w", path, err)
	}
	return m, nil
}

// Save writes m to path. An existing file is first renamed to path+".bak".
func Save[V any](path string, m map[string]V) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding cache %s: %w", path, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("backing up cache %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing cache %s: %w", path, err)
	}
	return nil
}
