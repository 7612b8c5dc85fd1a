package docstore

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in-memory and guards access with a RWMutex.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]any),
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Fetch returns a copy of the stored document.
func (s *MemoryStore) Fetch(ctx context.Context, id string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneMap(doc), nil
}

// Put stores a copy of doc under id.
func (s *MemoryStore) Put(ctx context.Context, id string, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := cloneMap(doc)
	stored[idField] = id

	s.mu.Lock()
	s.docs[id] = stored
	s.mu.Unlock()

	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }
