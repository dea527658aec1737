package lockstore

import (
	"context"
	"sync"
	"time"
)

type MemLockStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

func NewMemLockStore() *MemLockStore {
	return &MemLockStore{
		expires: make(map[string]time.Time),
	}
}

var _ LockStore = (*MemLockStore)(nil)

func (s *MemLockStore) Get(ctx context.Context, communityID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.expires[communityID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemLockStore) Set(ctx context.Context, communityID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[communityID] = expiresAt
	return nil
}

func (s *MemLockStore) Clear(ctx context.Context, communityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, communityID)
	return nil
}
