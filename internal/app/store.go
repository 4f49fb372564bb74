package app

import (
	"context"

	"trivia-game-service/internal/domain"
)

// Persisted game statuses. Only running and finished games have rows.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// QuestionRow is a question as stored, before mapping to domain values.
type QuestionRow struct {
	ID            int64
	Level         string
	Statement     string
	AlternativeA  string
	AlternativeB  string
	AlternativeC  string
	AlternativeD  string
	CorrectAnswer string
}

// UserRepository persists players and their scores.
type UserRepository interface {
	InsertUser(ctx context.Context, name string) (int64, error)
	// UpdateUserScore reports false when no row matched.
	UpdateUserScore(ctx context.Context, id int64, score int) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	ListUsersByScoreDesc(ctx context.Context) ([]domain.RankingEntry, error)
	ClearUsers(ctx context.Context) error
}

// QuestionRepository persists the question bank.
type QuestionRepository interface {
	InsertQuestion(ctx context.Context, q domain.Question) (int64, error)
	// SampleQuestions returns up to 4 easy, 4 medium and 2 hard rows drawn at random per tier.
	SampleQuestions(ctx context.Context) ([]QuestionRow, error)
	CountQuestions(ctx context.Context) (int, error)
	ClearQuestions(ctx context.Context) error
}

// GameRepository persists game rows.
type GameRepository interface {
	InsertGame(ctx context.Context, userID int64, questionIDs []int64) (int64, error)
	// UpdateGameScore completes an in-progress game; false means the row was not in progress.
	UpdateGameScore(ctx context.Context, gameID int64, score int) (bool, error)
	DeleteInProgressGame(ctx context.Context, gameID int64) (bool, error)
	ClearGames(ctx context.Context) error
}

// Store is the persistence gateway. InTx runs fn against a transaction-scoped
// store, committing when fn returns nil and rolling back otherwise.
type Store interface {
	UserRepository
	QuestionRepository
	GameRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// GameRegistry tracks games that are currently being played in this process.
type GameRegistry interface {
	// Add stores the game under its key unless the key is already present.
	Add(game domain.Game)
	Get(key string) (domain.Game, bool)
	Remove(key string)
	Clear()
}

// RankingLoader reads the leaderboard from the backing store.
type RankingLoader interface {
	ListUsersByScoreDesc(ctx context.Context) ([]domain.RankingEntry, error)
}

// RankingCache fronts the leaderboard query (in-memory, Redis, etc).
type RankingCache interface {
	GetRanking(ctx context.Context) ([]domain.RankingEntry, error)
	Invalidate(ctx context.Context) error
}
