package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-game-service/internal/domain"
)

const markerTimeout = 2 * time.Second

// GameRegistry is a Redis-aware implementation of app.GameRegistry.
// Notes:
//   - Game values stay in a local map; the registry is authoritative only
//     within this process.
//   - Redis holds a liveness marker per active game (owner user id, TTL) so
//     operators and other instances can see what is being played.
//   - Markers are written after the local map is updated and outside its
//     lock. A failed write is logged and never blocks lookups.
type GameRegistry struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
	mu     sync.RWMutex
	games  map[string]domain.Game
}

func NewGameRegistry(client *redis.Client, ttl time.Duration, logger *slog.Logger) *GameRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameRegistry{
		client: client,
		ttl:    ttl,
		log:    logger,
		games:  make(map[string]domain.Game),
	}
}

func (r *GameRegistry) Add(game domain.Game) {
	key := game.Key()
	r.mu.Lock()
	if _, ok := r.games[key]; ok {
		r.mu.Unlock()
		return
	}
	r.games[key] = game
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), game.User.ID, r.ttl).Err(); err != nil {
		r.log.Warn("set game marker failed", "game_id", game.ID, "err", err)
	}
}

func (r *GameRegistry) Get(key string) (domain.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[key]
	return game, ok
}

func (r *GameRegistry) Remove(key string) {
	r.mu.Lock()
	if _, ok := r.games[key]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.games, key)
	r.mu.Unlock()

	r.deleteMarkers(r.key(key))
}

func (r *GameRegistry) Clear() {
	r.mu.Lock()
	keys := make([]string, 0, len(r.games))
	for key := range r.games {
		keys = append(keys, r.key(key))
	}
	r.games = make(map[string]domain.Game)
	r.mu.Unlock()

	if len(keys) > 0 {
		r.deleteMarkers(keys...)
	}
}

func (r *GameRegistry) deleteMarkers(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("delete game markers failed", "keys", keys, "err", err)
	}
}

func (r *GameRegistry) key(gameKey string) string {
	return "trivia:game:" + gameKey
}
