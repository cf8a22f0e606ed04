// Package refcache implements the durable reference cache as a single shared
// file of identifier:reference lines, guarded by an exclusive advisory lock
// held from Load until Save.
package refcache

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Cache is a file-backed identifier -> reference store. The lock acquired in
// Load serializes whole runs against each other; it is not a transactional
// guarantee across crashes, so a crash mid-Save can leave a truncated file.
type Cache struct {
	path string
	file *os.File
}

// New creates a cache backed by the given file path. The file is opened and
// locked by Load.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Load opens the cache file, creating it if absent, acquires an exclusive
// advisory lock and parses one identifier:reference pair per line. Malformed
// lines are skipped.
func (c *Cache) Load() (map[string]string, error) {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file %s: %w", c.path, err)
	}
	if err := lockFile(f); err != nil {
		//nolint:errcheck,gosec // G104: Best effort close on lock failure
		f.Close()
		return nil, fmt.Errorf("failed to lock cache file %s: %w", c.path, err)
	}
	c.file = f

	refs := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, ref, ok := strings.Cut(line, ":")
		if !ok || id == "" || ref == "" {
			continue
		}
		refs[id] = ref
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache file %s: %w", c.path, err)
	}
	return refs, nil
}

// Save truncates the cache file and rewrites it with one line per entry,
// sorted by identifier for reproducible diffs, then releases the lock.
func (c *Cache) Save(refs map[string]string) error {
	if c.file == nil {
		return fmt.Errorf("cache file %s is not loaded", c.path)
	}

	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := c.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate cache file %s: %w", c.path, err)
	}
	if _, err := c.file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind cache file %s: %w", c.path, err)
	}

	w := bufio.NewWriter(c.file)
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%s:%s\n", id, refs[id]); err != nil {
			return fmt.Errorf("failed to write cache file %s: %w", c.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush cache file %s: %w", c.path, err)
	}

	return c.Close()
}

// Close releases the advisory lock and closes the file. It is safe to call
// multiple times and after Save.
func (c *Cache) Close() error {
	if c.file == nil {
		return nil
	}
	// Unlock before Close for explicitness; Close also releases the lock.
	if err := unlockFile(c.file); err != nil {
		//nolint:errcheck,gosec // G104: Best effort close after unlock failure
		c.file.Close()
		c.file = nil
		return fmt.Errorf("failed to unlock cache file %s: %w", c.path, err)
	}
	err := c.file.Close()
	c.file = nil
	if err != nil {
		return fmt.Errorf("failed to close cache file %s: %w", c.path, err)
	}
	return nil
}
