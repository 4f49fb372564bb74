package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

const (
	// RankingKey holds the JSON-encoded leaderboard snapshot.
	RankingKey = "trivia:ranking"
	// RankingVersionKey is incremented by every invalidation. A snapshot is
	// only written if the version it was loaded under is still current.
	RankingVersionKey = "trivia:ranking:version"
)

// RankingCache caches the leaderboard in Redis and falls back to a loader on cache miss.
// Several instances sharing one Redis share the snapshot; any of them may invalidate it.
type RankingCache struct {
	client *redis.Client
	loader app.RankingLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRankingCache(client *redis.Client, loader app.RankingLoader, ttl time.Duration) *RankingCache {
	return &RankingCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *RankingCache) GetRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	if entries, ok := c.cached(ctx); ok {
		return entries, nil
	}

	result, err, _ := c.sf.Do(RankingKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if entries, ok := c.cached(ctx); ok {
			return entries, nil
		}

		version, err := c.version(ctx)
		if err != nil {
			// without a version the snapshot cannot be guarded; serve uncached
			return c.loader.ListUsersByScoreDesc(ctx)
		}

		entries, err := c.loader.ListUsersByScoreDesc(ctx)
		if err != nil {
			return nil, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			if raw, err := json.Marshal(entries); err == nil {
				// a failed or skipped write only costs the next caller a reload
				_ = c.storeIfCurrent(ctx, version, raw, ttl)
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RankingEntry), nil
}

// Invalidate bumps the version before deleting the snapshot, so a load that
// started earlier cannot write its result back.
func (c *RankingCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, RankingVersionKey)
		pipe.Del(ctx, RankingKey)
		return nil
	})
	return err
}

func (c *RankingCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, RankingVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// storeIfCurrent writes the snapshot under WATCH on the version key; the
// write is dropped when an invalidation happened since version was read.
func (c *RankingCache) storeIfCurrent(ctx context.Context, version int64, raw []byte, ttl time.Duration) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, RankingVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, RankingKey, raw, ttl)
			return nil
		})
		return err
	}, RankingVersionKey)
}

func (c *RankingCache) cached(ctx context.Context) ([]domain.RankingEntry, bool) {
	raw, err := c.client.Get(ctx, RankingKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RankingCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
