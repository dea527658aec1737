package namestore

import (
	"context"
	"sync"
)

type MemNameStore struct {
	mu    sync.RWMutex
	names map[string][]string
}

func NewMemNameStore() *MemNameStore {
	return &MemNameStore{
		names: make(map[string][]string),
	}
}

var _ NameStore = (*MemNameStore)(nil)

func (s *MemNameStore) UsernamesOf(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names[userID]...), nil
}

func (s *MemNameStore) UsernamesOfMany(ctx context.Context, userIDs []string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(userIDs))
	for _, id := range userIDs {
		if names, ok := s.names[id]; ok {
			out[id] = append([]string(nil), names...)
		}
	}
	return out, nil
}

func (s *MemNameStore) Observe(ctx context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names[userID] {
		if n == name {
			return nil
		}
	}
	s.names[userID] = append(s.names[userID], name)
	return nil
}
