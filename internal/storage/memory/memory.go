// Package memory provides an in-process Store, optionally seeded from a
// JSON snapshot file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"quattrini/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// NewFromFile seeds the store from a JSON object mapping keys to values.
// A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for k, v := range seed {
		s.data[k] = append([]byte(nil), v...)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// PutMany applies every entry under one lock acquisition.
func (s *Store) PutMany(_ context.Context, entries []storage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.data)
	return nil
}

func (s *Store) Close() error { return nil }

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
