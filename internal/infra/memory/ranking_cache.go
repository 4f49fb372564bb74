package memory

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

const rankingKey = "ranking"

// RankingCache caches the leaderboard with a TTL to avoid repeated DB hits.
// A TTL of zero disables caching; concurrent misses still share one load.
type RankingCache struct {
	loader app.RankingLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	entries   []domain.RankingEntry
	expiresAt time.Time
	// generation changes on every invalidation so a load that raced with it is not stored
	generation uint64
}

func NewRankingCache(loader app.RankingLoader, ttl time.Duration) *RankingCache {
	return &RankingCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *RankingCache) GetRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	if entries, ok := c.cached(c.clock()); ok {
		return entries, nil
	}

	result, err, _ := c.sf.Do(rankingKey, func() (interface{}, error) {
		if entries, ok := c.cached(c.clock()); ok {
			return entries, nil
		}

		c.mu.RLock()
		gen := c.generation
		c.mu.RUnlock()

		entries, err := c.loader.ListUsersByScoreDesc(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if gen == c.generation {
			c.entries = entries
			c.expiresAt = c.clock().Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(result.([]domain.RankingEntry)), nil
}

func (c *RankingCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.expiresAt = time.Time{}
	c.generation++
	return nil
}

func (c *RankingCache) cached(now time.Time) ([]domain.RankingEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entries != nil && c.expiresAt.After(now) {
		return slices.Clone(c.entries), true
	}
	return nil, false
}

func (c *RankingCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
