// Package kvstore is the durable local key-value cache backing auth
// warm-start. It mirrors, and never owns, backend state: values are
// best-effort and the live session always wins.
package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a small durable string-keyed cache.
type Store interface {
	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool)
	Set(key, value string) error
	MultiRemove(keys ...string) error
}

// FileStore persists the cache as a JSON document, rewritten atomically on
// every mutation. Suited to the handful of warm-start keys it holds.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

var _ Store = (*FileStore)(nil)

// OpenFile loads (or initializes) a file-backed store at path.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		// A corrupt cache is discarded, not fatal; it is never
		// authoritative.
		s.values = make(map[string]string)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.persistLocked()
}

func (s *FileStore) MultiRemove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return s.persistLocked()
}

func (s *FileStore) persistLocked() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) MultiRemove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}
