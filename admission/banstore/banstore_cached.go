package banstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedBanStore wraps another BanStore with an in-process expirable LRU,
// read-through keyed by query. Entries expire after the TTL; the admission
// signal tolerates that much staleness.
type CachedBanStore struct {
	inner     BanStore
	users     *expirable.LRU[string, []BanRecord]
	community *expirable.LRU[string, []BanRecord]
}

func NewCachedBanStore(inner BanStore, capacity int, ttl time.Duration) *CachedBanStore {
	return &CachedBanStore{
		inner:     inner,
		users:     expirable.NewLRU[string, []BanRecord](capacity, nil, ttl),
		community: expirable.NewLRU[string, []BanRecord](capacity, nil, ttl),
	}
}

var _ BanStore = (*CachedBanStore)(nil)

// The cache key covers the community set as well as the user: the set of
// communities above the size threshold can drift between calls.
func userKey(userID string, communityIDs []string) string {
	ids := append([]string(nil), communityIDs...)
	sort.Strings(ids)
	return userID + "|" + strings.Join(ids, ",")
}

func (s *CachedBanStore) BansForUser(ctx context.Context, userID string, communityIDs []string) ([]BanRecord, error) {
	key := userKey(userID, communityIDs)
	if recs, ok := s.users.Get(key); ok {
		return recs, nil
	}
	recs, err := s.inner.BansForUser(ctx, userID, communityIDs)
	if err != nil {
		return nil, err
	}
	s.users.Add(key, recs)
	return recs, nil
}

func (s *CachedBanStore) BansForCommunity(ctx context.Context, communityID string) ([]BanRecord, error) {
	if recs, ok := s.community.Get(communityID); ok {
		return recs, nil
	}
	recs, err := s.inner.BansForCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	s.community.Add(communityID, recs)
	return recs, nil
}
