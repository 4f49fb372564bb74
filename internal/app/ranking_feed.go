package app

import (
	"sync"
	"time"

	"trivia-game-service/internal/domain"
)

// RankingFeed fans committed leaderboard snapshots out to subscribers.
type RankingFeed struct {
	now         func() time.Time
	mu          sync.Mutex
	subscribers map[chan domain.Ranking]struct{}
}

func NewRankingFeed() *RankingFeed {
	return NewRankingFeedWithClock(time.Now)
}

// NewRankingFeedWithClock is test-only for deterministic timestamps.
func NewRankingFeedWithClock(now func() time.Time) *RankingFeed {
	return &RankingFeed{
		now:         now,
		subscribers: make(map[chan domain.Ranking]struct{}),
	}
}

// Subscribe returns a channel of ranking snapshots published from now on.
// The caller must invoke cancel to avoid leaks.
func (f *RankingFeed) Subscribe() (<-chan domain.Ranking, func()) {
	ch := make(chan domain.Ranking, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone is listening.
func (f *RankingFeed) HasSubscribers() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) > 0
}

// Publish stamps and broadcasts a snapshot.
func (f *RankingFeed) Publish(entries []domain.RankingEntry) domain.Ranking {
	f.mu.Lock()
	defer f.mu.Unlock()

	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	snapshot := domain.Ranking{Entries: entries, UpdatedAt: f.now()}
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			// slow subscriber: drop the stale snapshot so the newest one fits
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
	return snapshot
}
