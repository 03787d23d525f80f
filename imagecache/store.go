// Package imagecache implements the content-addressed local image cache.
//
// store.go contains the filesystem-backed Store: a single flat directory
// of <hex-digest>.png files. Existence of a file is the only metadata.
package imagecache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// entryExt is the extension for every cache entry.
const entryExt = ".png"

// Store is a filesystem-backed key/value store for generated images.
//
// The store assumes a single local process (at most one writer at a
// time). Writes still go through a stage-then-rename sequence so an
// interrupted process can never leave a truncated entry behind: a cache
// file is always complete or absent.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating the directory if it
// does not exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("imagecache: cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagecache: failed to create cache directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// Path returns the file path a key maps to. The key is hex, so the path
// never escapes the cache root.
func (s *Store) Path(key Key) string {
	return filepath.Join(s.root, key.String()+entryExt)
}

// Lookup reads the entry for key. A missing or zero-byte file is a miss,
// never an error; only unexpected I/O failures (permissions, bad media)
// are returned, and callers may treat those as a miss too.
func (s *Store) Lookup(key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("imagecache: failed to read entry %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}

// Contains reports whether a non-empty entry exists for key.
func (s *Store) Contains(key Key) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Store writes data under key using stage-then-rename. The temp file is
// created inside the cache root so the final rename stays on one
// filesystem. If an entry already exists it is replaced (last writer
// wins, acceptable for the single-user deployment).
func (s *Store) Store(key Key, data []byte) error {
	tmp, err := os.CreateTemp(s.root, key.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("imagecache: failed to stage entry %s: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("imagecache: failed to write entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("imagecache: failed to close staged entry %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, s.Path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("imagecache: failed to publish entry %s: %w", key, err)
	}
	return nil
}

// ClearAll deletes every regular file under the cache root and reports
// how many were removed. The directory itself persists. An already-empty
// cache clears successfully with a zero count. Stray staging files are
// removed but not counted as entries.
func (s *Store) ClearAll() (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("imagecache: failed to list cache root: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("imagecache: failed to remove %s: %w", entry.Name(), err)
		}
		if strings.HasSuffix(entry.Name(), entryExt) {
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of cache entries currently on disk.
func (s *Store) Len() (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("imagecache: failed to list cache root: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), entryExt) {
			count++
		}
	}
	return count, nil
}
