package banstore

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// RedisBanStore wraps another BanStore with a redis-backed read-through
// cache (plus a small in-process TinyLFU tier), for deployments running
// more than one process against the same database.
type RedisBanStore struct {
	inner BanStore
	data  *cache.Cache
	ttl   time.Duration
}

func NewRedisBanStore(inner BanStore, redisURL string, ttl time.Duration) (*RedisBanStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, ttl),
	})
	return &RedisBanStore{
		inner: inner,
		data:  data,
		ttl:   ttl,
	}, nil
}

var _ BanStore = (*RedisBanStore)(nil)

func (s *RedisBanStore) BansForUser(ctx context.Context, userID string, communityIDs []string) ([]BanRecord, error) {
	key := "bans/user/" + userKey(userID, communityIDs)
	var recs []BanRecord
	err := s.data.Get(ctx, key, &recs)
	if err == nil {
		return recs, nil
	}
	if err != cache.ErrCacheMiss {
		return nil, err
	}
	recs, err = s.inner.BansForUser(ctx, userID, communityIDs)
	if err != nil {
		return nil, err
	}
	if err := s.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: recs,
		TTL:   s.ttl,
	}); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *RedisBanStore) BansForCommunity(ctx context.Context, communityID string) ([]BanRecord, error) {
	key := "bans/community/" + communityID
	var recs []BanRecord
	err := s.data.Get(ctx, key, &recs)
	if err == nil {
		return recs, nil
	}
	if err != cache.ErrCacheMiss {
		return nil, err
	}
	recs, err = s.inner.BansForCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := s.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: recs,
		TTL:   s.ttl,
	}); err != nil {
		return nil, err
	}
	return recs, nil
}
