package memory

import (
	"context"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"time"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// Store is an in-process implementation of app.Store, used when no database
// is configured and in tests. Identifiers restart at 1 after a clear.
//
// Every exported operation holds txMu, so calls made outside a transaction
// wait for an open one to commit or roll back. They never observe
// uncommitted rows and a rollback never discards them.
type Store struct {
	txMu sync.Mutex // held by InTx for the whole callback and by each single operation

	mu       sync.Mutex
	rnd      *rand.Rand
	data     storeData
	failures map[string]error
}

type storeData struct {
	users     map[int64]userRecord
	questions map[int64]domain.Question
	games     map[int64]gameRecord
	nextUser  int64
	nextQuest int64
	nextGame  int64
}

type userRecord struct {
	name  string
	score int
}

type gameRecord struct {
	userID      int64
	questionIDs []int64
	score       int
	status      string
}

func NewStore() *Store {
	return &Store{
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
		data: emptyData(),
	}
}

func emptyData() storeData {
	return storeData{
		users:     make(map[int64]userRecord),
		questions: make(map[int64]domain.Question),
		games:     make(map[int64]gameRecord),
	}
}

func (d storeData) clone() storeData {
	out := storeData{
		users:     make(map[int64]userRecord, len(d.users)),
		questions: make(map[int64]domain.Question, len(d.questions)),
		games:     make(map[int64]gameRecord, len(d.games)),
		nextUser:  d.nextUser,
		nextQuest: d.nextQuest,
		nextGame:  d.nextGame,
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.questions {
		out.questions[k] = v
	}
	for k, v := range d.games {
		v.questionIDs = slices.Clone(v.questionIDs)
		out.games[k] = v
	}
	return out
}

// FailOn makes the named operation (e.g. "InsertGame") return err until
// cleared with a nil err. Test hook for partial-failure paths.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures == nil {
		s.failures = make(map[string]error)
	}
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) injected(op string) error {
	return s.failures[op]
}

// InTx runs fn against the store; on error the data is restored to its state
// before fn.
func (s *Store) InTx(_ context.Context, fn func(tx app.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(txStore{s: s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) insertUser(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertUser"); err != nil {
		return 0, err
	}
	s.data.nextUser++
	s.data.users[s.data.nextUser] = userRecord{name: name}
	return s.data.nextUser, nil
}

func (s *Store) updateUserScore(_ context.Context, id int64, score int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("UpdateUserScore"); err != nil {
		return false, err
	}
	u, ok := s.data.users[id]
	if !ok {
		return false, nil
	}
	u.score = score
	s.data.users[id] = u
	return true, nil
}

func (s *Store) deleteUser(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeleteUser"); err != nil {
		return false, err
	}
	if _, ok := s.data.users[id]; !ok {
		return false, nil
	}
	delete(s.data.users, id)
	for gid, g := range s.data.games {
		if g.userID == id {
			delete(s.data.games, gid)
		}
	}
	return true, nil
}

// listUsersByScoreDesc orders by score, ties by insertion order.
func (s *Store) listUsersByScoreDesc(_ context.Context) ([]domain.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ListUsersByScoreDesc"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(s.data.users))
	for id := range s.data.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ui, uj := s.data.users[ids[i]], s.data.users[ids[j]]
		if ui.score != uj.score {
			return ui.score > uj.score
		}
		return ids[i] < ids[j]
	})
	entries := make([]domain.RankingEntry, 0, len(ids))
	for _, id := range ids {
		u := s.data.users[id]
		entries = append(entries, domain.RankingEntry{Name: u.name, Score: u.score})
	}
	return entries, nil
}

func (s *Store) clearUsers(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ClearUsers"); err != nil {
		return err
	}
	s.data.users = make(map[int64]userRecord)
	s.data.games = make(map[int64]gameRecord)
	s.data.nextUser = 0
	return nil
}

func (s *Store) insertQuestion(_ context.Context, q domain.Question) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertQuestion"); err != nil {
		return 0, err
	}
	s.data.nextQuest++
	q.ID = s.data.nextQuest
	s.data.questions[q.ID] = q
	return q.ID, nil
}

// sampleQuestions draws each tier independently and uniformly.
func (s *Store) sampleQuestions(_ context.Context) ([]app.QuestionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("SampleQuestions"); err != nil {
		return nil, err
	}
	byLevel := make(map[domain.Difficulty][]domain.Question)
	for _, q := range s.data.questions {
		byLevel[q.Level] = append(byLevel[q.Level], q)
	}

	rows := make([]app.QuestionRow, 0, domain.QuestionsPerGame)
	for _, level := range domain.Difficulties {
		tier := byLevel[level]
		// map iteration order is not uniform; sort before shuffling
		sort.Slice(tier, func(i, j int) bool { return tier[i].ID < tier[j].ID })
		s.rnd.Shuffle(len(tier), func(i, j int) { tier[i], tier[j] = tier[j], tier[i] })
		n := min(domain.TierQuota[level], len(tier))
		for _, q := range tier[:n] {
			rows = append(rows, app.QuestionRow{
				ID:            q.ID,
				Level:         string(q.Level),
				Statement:     q.Statement,
				AlternativeA:  q.AlternativeA,
				AlternativeB:  q.AlternativeB,
				AlternativeC:  q.AlternativeC,
				AlternativeD:  q.AlternativeD,
				CorrectAnswer: string(q.Answer),
			})
		}
	}
	return rows, nil
}

func (s *Store) countQuestions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("CountQuestions"); err != nil {
		return 0, err
	}
	return len(s.data.questions), nil
}

func (s *Store) clearQuestions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ClearQuestions"); err != nil {
		return err
	}
	s.data.questions = make(map[int64]domain.Question)
	s.data.nextQuest = 0
	return nil
}

func (s *Store) insertGame(_ context.Context, userID int64, questionIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertGame"); err != nil {
		return 0, err
	}
	if _, ok := s.data.users[userID]; !ok {
		return 0, domain.ErrUserNotFound
	}
	s.data.nextGame++
	s.data.games[s.data.nextGame] = gameRecord{
		userID:      userID,
		questionIDs: slices.Clone(questionIDs),
		status:      app.StatusInProgress,
	}
	return s.data.nextGame, nil
}

func (s *Store) updateGameScore(_ context.Context, gameID int64, score int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("UpdateGameScore"); err != nil {
		return false, err
	}
	g, ok := s.data.games[gameID]
	if !ok || g.status != app.StatusInProgress {
		return false, nil
	}
	g.score = score
	g.status = app.StatusCompleted
	s.data.games[gameID] = g
	return true, nil
}

func (s *Store) deleteInProgressGame(_ context.Context, gameID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeleteInProgressGame"); err != nil {
		return false, err
	}
	g, ok := s.data.games[gameID]
	if !ok || g.status != app.StatusInProgress {
		return false, nil
	}
	delete(s.data.games, gameID)
	return true, nil
}

func (s *Store) clearGames(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ClearGames"); err != nil {
		return err
	}
	s.data.games = make(map[int64]gameRecord)
	s.data.nextGame = 0
	return nil
}

// GameStatus is a test helper reporting the persisted status of a game row.
func (s *Store) GameStatus(gameID int64) (string, int, bool) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.data.games[gameID]
	return g.status, g.score, ok
}

// UserCount is a test helper reporting how many user rows exist.
func (s *Store) UserCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.users)
}
