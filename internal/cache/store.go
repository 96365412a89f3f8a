// Package cache implements the file-backed JSON cache: one file per
// key, file modification time as the TTL clock. Entries are plain JSON
// so operators can inspect or delete them by hand.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riskrank/riskrank/internal/metrics"
)

// Store is a directory of <key>.json entries.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a cache directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps keys filesystem-safe without losing readability.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return r.Replace(key)
}

// IsValid reports whether the entry exists and its mtime is within ttl.
// A negative ttl is a programming error.
func (s *Store) IsValid(key string, ttl time.Duration) bool {
	if ttl < 0 {
		panic(fmt.Sprintf("cache: negative ttl %v for key %q", ttl, key))
	}
	info, err := os.Stat(s.path(key))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= ttl
}

// Get reads the entry into out. Any failure (absent, unreadable,
// corrupt JSON) is a miss; a corrupt file is removed so the next write
// starts clean.
func (s *Store) Get(key string, out any) bool {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.CacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("dropping corrupt cache entry")
		_ = os.Remove(path)
		metrics.CacheMisses.Inc()
		return false
	}
	metrics.CacheHits.Inc()
	return true
}

// GetValid combines IsValid and Get: a stale entry is a miss even when
// readable.
func (s *Store) GetValid(key string, ttl time.Duration, out any) bool {
	if !s.IsValid(key, ttl) {
		metrics.CacheMisses.Inc()
		return false
	}
	return s.Get(key, out)
}

// Put serializes v and atomically replaces the entry, so a concurrent
// reader sees either the old or the new complete file.
func (s *Store) Put(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("stage cache entry %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache entry %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit cache entry %q: %w", key, err)
	}
	return nil
}

// Delete removes one entry. Removing an absent entry is not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix and
// returns how many were removed.
func (s *Store) DeletePrefix(prefix string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("scan cache dir: %w", err)
	}
	want := sanitizeKey(prefix)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || !strings.HasPrefix(name, want) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("delete cache entry %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// Purge removes every entry and returns how many were removed.
func (s *Store) Purge() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("scan cache dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("purge cache entry %s: %w", e.Name(), err)
		}
		removed++
	}
	log.Info().Int("removed", removed).Str("dir", s.dir).Msg("cache purged")
	return removed, nil
}
