package memory

import (
	"context"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// The exported operations below run one at a time against committed data.

func (s *Store) InsertUser(ctx context.Context, name string) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.insertUser(ctx, name)
}

func (s *Store) UpdateUserScore(ctx context.Context, id int64, score int) (bool, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updateUserScore(ctx, id, score)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.deleteUser(ctx, id)
}

func (s *Store) ListUsersByScoreDesc(ctx context.Context) ([]domain.RankingEntry, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.listUsersByScoreDesc(ctx)
}

func (s *Store) ClearUsers(ctx context.Context) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.clearUsers(ctx)
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.insertQuestion(ctx, q)
}

func (s *Store) SampleQuestions(ctx context.Context) ([]app.QuestionRow, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.sampleQuestions(ctx)
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.countQuestions(ctx)
}

func (s *Store) ClearQuestions(ctx context.Context) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.clearQuestions(ctx)
}

func (s *Store) InsertGame(ctx context.Context, userID int64, questionIDs []int64) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.insertGame(ctx, userID, questionIDs)
}

func (s *Store) UpdateGameScore(ctx context.Context, gameID int64, score int) (bool, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updateGameScore(ctx, gameID, score)
}

func (s *Store) DeleteInProgressGame(ctx context.Context, gameID int64) (bool, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.deleteInProgressGame(ctx, gameID)
}

func (s *Store) ClearGames(ctx context.Context) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.clearGames(ctx)
}

// txStore is the view handed to InTx callbacks. The caller already holds
// txMu, so it goes straight to the unlocked operations; nested InTx calls
// join the outer transaction.
type txStore struct {
	s *Store
}

func (t txStore) InTx(_ context.Context, fn func(tx app.Store) error) error {
	return fn(t)
}

func (t txStore) InsertUser(ctx context.Context, name string) (int64, error) {
	return t.s.insertUser(ctx, name)
}

func (t txStore) UpdateUserScore(ctx context.Context, id int64, score int) (bool, error) {
	return t.s.updateUserScore(ctx, id, score)
}

func (t txStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return t.s.deleteUser(ctx, id)
}

func (t txStore) ListUsersByScoreDesc(ctx context.Context) ([]domain.RankingEntry, error) {
	return t.s.listUsersByScoreDesc(ctx)
}

func (t txStore) ClearUsers(ctx context.Context) error {
	return t.s.clearUsers(ctx)
}

func (t txStore) InsertQuestion(ctx context.Context, q domain.Question) (int64, error) {
	return t.s.insertQuestion(ctx, q)
}

func (t txStore) SampleQuestions(ctx context.Context) ([]app.QuestionRow, error) {
	return t.s.sampleQuestions(ctx)
}

func (t txStore) CountQuestions(ctx context.Context) (int, error) {
	return t.s.countQuestions(ctx)
}

func (t txStore) ClearQuestions(ctx context.Context) error {
	return t.s.clearQuestions(ctx)
}

func (t txStore) InsertGame(ctx context.Context, userID int64, questionIDs []int64) (int64, error) {
	return t.s.insertGame(ctx, userID, questionIDs)
}

func (t txStore) UpdateGameScore(ctx context.Context, gameID int64, score int) (bool, error) {
	return t.s.updateGameScore(ctx, gameID, score)
}

func (t txStore) DeleteInProgressGame(ctx context.Context, gameID int64) (bool, error) {
	return t.s.deleteInProgressGame(ctx, gameID)
}

func (t txStore) ClearGames(ctx context.Context) error {
	return t.s.clearGames(ctx)
}
