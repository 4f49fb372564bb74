package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trivia-game-service/internal/domain"
)

// UserService registers players, keeps their scores and builds the ranking.
type UserService struct {
	users   UserRepository
	ranking RankingCache
	log     *slog.Logger
}

func NewUserService(users UserRepository, ranking RankingCache, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, ranking: ranking, log: logger}
}

// withRepository returns a copy bound to another repository (a transaction).
func (s *UserService) withRepository(users UserRepository) *UserService {
	return &UserService{users: users, ranking: s.ranking, log: s.log}
}

// RegisterUser persists a new player with a zero score.
func (s *UserService) RegisterUser(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ErrEmptyName
	}
	id, err := s.users.InsertUser(ctx, name)
	if err != nil {
		return domain.User{}, fmt.Errorf("register user: %w", err)
	}
	return domain.User{ID: id, Name: name}, nil
}

// UpdateScore persists the score and returns the updated user. The input is untouched on failure.
func (s *UserService) UpdateScore(ctx context.Context, user domain.User, score int) (domain.User, error) {
	if score < 0 {
		return user, domain.ErrNegativeScore
	}
	ok, err := s.users.UpdateUserScore(ctx, user.ID, score)
	if err != nil {
		return user, fmt.Errorf("update score: %w", err)
	}
	if !ok {
		return user, domain.ErrUserNotFound
	}
	s.invalidate(ctx)
	user.Score = score
	return user, nil
}

// DeleteUser removes the player row. Only used when a game is dropped.
func (s *UserService) DeleteUser(ctx context.Context, user domain.User) error {
	ok, err := s.users.DeleteUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	s.invalidate(ctx)
	return nil
}

// GetRanking returns every player ordered by score, highest first.
func (s *UserService) GetRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	entries, err := s.ranking.GetRanking(ctx)
	if err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}
	return entries, nil
}

// ClearUsers empties the user table.
func (s *UserService) ClearUsers(ctx context.Context) error {
	if err := s.users.ClearUsers(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops the cached ranking. A failure only delays freshness until the TTL expires.
func (s *UserService) invalidate(ctx context.Context) {
	if err := s.ranking.Invalidate(ctx); err != nil {
		s.log.Warn("ranking cache invalidation failed", "err", err)
	}
}
