// Package jsonfile persists small stores as JSON files.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/colonyops/tabula/internal/core/history"
)

// RecentFile is the root JSON structure stored on disk.
type RecentFile struct {
	Entries []history.Entry `json:"entries"`
}

// RecentStore implements history.Store using a JSON file for persistence.
type RecentStore struct {
	path string
	mu   sync.RWMutex
}

var _ history.Store = (*RecentStore)(nil)

// NewRecentStore creates a store backed by the file at path. The file and
// its directory are created on first write.
func NewRecentStore(path string) *RecentStore {
	return &RecentStore{path: path}
}

// Path returns the backing file.
func (s *RecentStore) Path() string { return s.path }

// List returns all entries, newest first.
func (s *RecentStore) List(ctx context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.Entries, nil
}

// Record puts entry at the front, dropping any older entry for the same
// path, and prunes the list to maxEntries.
func (s *RecentStore) Record(ctx context.Context, entry history.Entry, maxEntries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	file.Entries = slices.DeleteFunc(file.Entries, func(e history.Entry) bool {
		return e.Path == entry.Path
	})
	file.Entries = append([]history.Entry{entry}, file.Entries...)

	if maxEntries > 0 && len(file.Entries) > maxEntries {
		file.Entries = file.Entries[:maxEntries]
	}

	return s.save(file)
}

// Forget removes path from the list. Unknown paths are a no-op.
func (s *RecentStore) Forget(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	n := len(file.Entries)
	file.Entries = slices.DeleteFunc(file.Entries, func(e history.Entry) bool {
		return e.Path == path
	})
	if len(file.Entries) == n {
		return nil
	}
	return s.save(file)
}

// Clear removes all entries.
func (s *RecentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(RecentFile{Entries: []history.Entry{}})
}

// load reads the file from disk. A missing or empty file is an empty list.
func (s *RecentStore) load() (RecentFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return RecentFile{}, nil
		}
		return RecentFile{}, err
	}

	if len(data) == 0 {
		return RecentFile{}, nil
	}

	var file RecentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return RecentFile{}, err
	}
	return file, nil
}

// save writes the file atomically.
func (s *RecentStore) save(file RecentFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
