package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"trivia-game-service/internal/domain"
)

func TestRankingCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{entries: []domain.RankingEntry{{Name: "Alice", Score: 200}, {Name: "Bob", Score: 100}}}
	cache := NewRankingCache(newClient(mr), loader, time.Minute)

	got, err := cache.GetRanking(context.Background())
	if err != nil {
		t.Fatalf("get ranking: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(got) != 2 || got[0].Name != "Alice" {
		t.Fatalf("unexpected ranking %+v", got)
	}
	if !mr.Exists(RankingKey) {
		t.Fatalf("expected ranking key to be set")
	}

	// Second call should hit cache, loader not incremented.
	got, _ = cache.GetRanking(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(got) != 2 || got[1].Score != 100 {
		t.Fatalf("unexpected cached ranking %+v", got)
	}
}

func TestRankingCacheInvalidateDeletesKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{entries: []domain.RankingEntry{{Name: "Alice", Score: 1}}}
	cache := NewRankingCache(newClient(mr), loader, time.Minute)

	_, _ = cache.GetRanking(context.Background())
	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(RankingKey) {
		t.Fatalf("expected ranking key removed")
	}
	_, _ = cache.GetRanking(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, got %d", loader.calls)
	}
}

func TestRankingCacheExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{}
	cache := NewRankingCache(newClient(mr), loader, time.Minute)

	_, _ = cache.GetRanking(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = cache.GetRanking(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, got %d", loader.calls)
	}
}

func TestRankingCacheSkipsSnapshotLoadedBeforeInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &racingLoader{}
	cache := NewRankingCache(newClient(mr), loader, time.Minute)
	// a finish commits and invalidates while the first read is in flight
	loader.onFirst = func() {
		if err := cache.Invalidate(context.Background()); err != nil {
			t.Errorf("invalidate: %v", err)
		}
	}

	got, err := cache.GetRanking(context.Background())
	if err != nil {
		t.Fatalf("get ranking: %v", err)
	}
	if got[0].Score != 0 {
		t.Fatalf("expected the in-flight read to be returned as is, got %+v", got)
	}
	if mr.Exists(RankingKey) {
		t.Fatalf("snapshot loaded before the invalidation must not be cached")
	}

	got, err = cache.GetRanking(context.Background())
	if err != nil {
		t.Fatalf("get ranking: %v", err)
	}
	if loader.calls != 2 || got[0].Score != 7000 {
		t.Fatalf("expected a reload with Bob at 7000, calls=%d got %+v", loader.calls, got)
	}
	if !mr.Exists(RankingKey) {
		t.Fatalf("expected fresh snapshot cached")
	}
}

// racingLoader returns Bob at 0 on the first call and at 7000 afterwards.
type racingLoader struct {
	onFirst func()
	calls   int
}

func (l *racingLoader) ListUsersByScoreDesc(_ context.Context) ([]domain.RankingEntry, error) {
	l.calls++
	if l.calls == 1 {
		l.onFirst()
		return []domain.RankingEntry{{Name: "Bob", Score: 0}}, nil
	}
	return []domain.RankingEntry{{Name: "Bob", Score: 7000}}, nil
}

type countingLoader struct {
	entries []domain.RankingEntry
	calls   int
}

func (l *countingLoader) ListUsersByScoreDesc(_ context.Context) ([]domain.RankingEntry, error) {
	l.calls++
	return l.entries, nil
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
