// Package cas implements the incremental build cache.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FingerprintStore = (*Store)(nil)

// Store implements ports.FingerprintStore using a flat JSON file.
// Entries are keyed by category, then by source path.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[domain.Category]map[string]string
	dirty   bool
}

// NewStore creates a Store backed by the file at path, loading it if present.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    filepath.Clean(path),
		entries: make(map[domain.Category]map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", s.path)
	}

	return nil
}

// Changed reports whether fingerprint differs from the recorded one for path.
func (s *Store) Changed(category domain.Category, path, fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorded, ok := s.entries[category][path]
	return !ok || recorded != fingerprint
}

// Commit records fingerprint for path.
func (s *Store) Commit(category domain.Category, path, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.entries[category]
	if !ok {
		bucket = make(map[string]string)
		s.entries[category] = bucket
	}
	if bucket[path] != fingerprint {
		bucket[path] = fingerprint
		s.dirty = true
	}
}

// Flush writes the cache to disk if it changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}

	s.dirty = false
	return nil
}

// Reset drops every entry and removes the cache file.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[domain.Category]map[string]string)
	s.dirty = false

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.path)
	}
	return nil
}
