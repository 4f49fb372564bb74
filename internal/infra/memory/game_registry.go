package memory

import (
	"sync"

	"trivia-game-service/internal/domain"
)

// GameRegistry is an in-memory implementation of app.GameRegistry.
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]domain.Game
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{
		games: make(map[string]domain.Game),
	}
}

// Add is a no-op when the key is already registered.
func (r *GameRegistry) Add(game domain.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := game.Key()
	if _, ok := r.games[key]; ok {
		return
	}
	r.games[key] = game
}

func (r *GameRegistry) Get(key string) (domain.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[key]
	return game, ok
}

func (r *GameRegistry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, key)
}

func (r *GameRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = make(map[string]domain.Game)
}

// Len reports how many games are active.
func (r *GameRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
