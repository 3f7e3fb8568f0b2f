// Package memory provides an in-memory object store for tests.
package memory

import (
	"context"
	"sync"
)

// Store is a map-backed object store.
type Store struct {
	mu      sync.RWMutex
	objects map[string]struct{}
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string]struct{}),
	}
}

// Put records an object as written.
func (s *Store) Put(objectKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = struct{}{}
}

// Exists reports whether the key has been put.
func (s *Store) Exists(ctx context.Context, objectKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[objectKey]
	return ok, nil
}
