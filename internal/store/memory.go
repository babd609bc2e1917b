package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps collections in process memory. It is the default
// backend and the one used by tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]Collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]Collection)}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (Collection, error) {
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return Collection{}, nil
	}
	return Collection{Data: append([]byte(nil), c.Data...), Version: c.Version}, nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, c Collection) (Collection, error) {
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.collections[name]
	if current.Version != c.Version {
		return Collection{}, ErrVersionConflict
	}
	saved := Collection{Data: append([]byte(nil), c.Data...), Version: c.Version + 1}
	s.collections[name] = saved
	return Collection{Data: append([]byte(nil), saved.Data...), Version: saved.Version}, nil
}

func (s *MemoryStore) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
