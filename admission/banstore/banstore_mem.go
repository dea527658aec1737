package banstore

import (
	"context"
	"sync"
)

type MemBanStore struct {
	mu      sync.RWMutex
	records []BanRecord
}

func NewMemBanStore() *MemBanStore {
	return &MemBanStore{}
}

var _ BanStore = (*MemBanStore)(nil)

func (s *MemBanStore) Add(rec BanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *MemBanStore) BansForUser(ctx context.Context, userID string, communityIDs []string) ([]BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(communityIDs))
	for _, id := range communityIDs {
		wanted[id] = true
	}
	var out []BanRecord
	for _, r := range s.records {
		if r.UserID == userID && wanted[r.CommunityID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemBanStore) BansForCommunity(ctx context.Context, communityID string) ([]BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []BanRecord
	for _, r := range s.records {
		if r.CommunityID == communityID {
			out = append(out, r)
		}
	}
	return out, nil
}
