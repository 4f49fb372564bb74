package memory

import (
	"context"
	"testing"
	"time"

	"trivia-game-service/internal/domain"
)

func TestRankingCacheCaches(t *testing.T) {
	loader := &countingLoader{entries: []domain.RankingEntry{{Name: "Alice", Score: 10}}}
	cache := NewRankingCache(loader, time.Minute)

	if _, err := cache.GetRanking(context.Background()); err != nil {
		t.Fatalf("get ranking: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetRanking(context.Background()); err != nil {
		t.Fatalf("get ranking 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestRankingCacheInvalidate(t *testing.T) {
	loader := &countingLoader{entries: []domain.RankingEntry{{Name: "Alice", Score: 10}}}
	cache := NewRankingCache(loader, time.Minute)

	_, _ = cache.GetRanking(context.Background())
	loader.entries = []domain.RankingEntry{{Name: "Bob", Score: 20}, {Name: "Alice", Score: 10}}
	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	got, err := cache.GetRanking(context.Background())
	if err != nil {
		t.Fatalf("get ranking: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls %d", loader.calls)
	}
	if len(got) != 2 || got[0].Name != "Bob" {
		t.Fatalf("expected fresh ranking, got %+v", got)
	}
}

func TestRankingCacheZeroTTLAlwaysLoads(t *testing.T) {
	loader := &countingLoader{}
	cache := NewRankingCache(loader, 0)

	_, _ = cache.GetRanking(context.Background())
	_, _ = cache.GetRanking(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected every call to load, got %d", loader.calls)
	}
}

type countingLoader struct {
	entries []domain.RankingEntry
	calls   int
}

func (l *countingLoader) ListUsersByScoreDesc(_ context.Context) ([]domain.RankingEntry, error) {
	l.calls++
	return l.entries, nil
}
