package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store is the Postgres persistence gateway.
type Store struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// InTx runs fn inside a transaction. Calls on a transaction-scoped store join the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx app.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, db: tx, inTx: true})
	})
}

func (s *Store) InsertUser(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `INSERT INTO users (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateUserScore(ctx context.Context, id int64, score int) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE users SET score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return false, fmt.Errorf("update user score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ListUsersByScoreDesc(ctx context.Context) ([]domain.RankingEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT name, score FROM users ORDER BY score DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	entries := []domain.RankingEntry{}
	for rows.Next() {
		var e domain.RankingEntry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return entries, nil
}

func (s *Store) ClearUsers(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE users RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO questions (question_level, statement, alternative_a, alternative_b, alternative_c, alternative_d, correct_answer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, string(q.Level), q.Statement, q.AlternativeA, q.AlternativeB, q.AlternativeC, q.AlternativeD, string(q.Answer)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return id, nil
}

// SampleQuestions draws each tier independently with ORDER BY random().
func (s *Store) SampleQuestions(ctx context.Context) ([]app.QuestionRow, error) {
	rows, err := s.db.Query(ctx, `
		(SELECT id, question_level, statement, alternative_a, alternative_b, alternative_c, alternative_d, correct_answer
			FROM questions WHERE question_level = 'easy' ORDER BY random() LIMIT $1)
		UNION ALL
		(SELECT id, question_level, statement, alternative_a, alternative_b, alternative_c, alternative_d, correct_answer
			FROM questions WHERE question_level = 'medium' ORDER BY random() LIMIT $2)
		UNION ALL
		(SELECT id, question_level, statement, alternative_a, alternative_b, alternative_c, alternative_d, correct_answer
			FROM questions WHERE question_level = 'hard' ORDER BY random() LIMIT $3)
	`, domain.TierQuota[domain.Easy], domain.TierQuota[domain.Medium], domain.TierQuota[domain.Hard])
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	out := make([]app.QuestionRow, 0, domain.QuestionsPerGame)
	for rows.Next() {
		var r app.QuestionRow
		if err := rows.Scan(&r.ID, &r.Level, &r.Statement, &r.AlternativeA, &r.AlternativeB, &r.AlternativeC, &r.AlternativeD, &r.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return out, nil
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *Store) ClearQuestions(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE questions RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	return nil
}

func (s *Store) InsertGame(ctx context.Context, userID int64, questionIDs []int64) (int64, error) {
	raw, err := json.Marshal(questionIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal question ids: %w", err)
	}
	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO games (user_id, question_ids, status)
		VALUES ($1, $2::jsonb, $3)
		RETURNING id
	`, userID, string(raw), app.StatusInProgress).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateGameScore(ctx context.Context, gameID int64, score int) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE games SET score = $1, status = $2 WHERE id = $3 AND status = $4`,
		score, app.StatusCompleted, gameID, app.StatusInProgress)
	if err != nil {
		return false, fmt.Errorf("update game score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeleteInProgressGame(ctx context.Context, gameID int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM games WHERE id = $1 AND status = $2`, gameID, app.StatusInProgress)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ClearGames(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE games RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear games: %w", err)
	}
	return nil
}

// GameStatus reads the persisted status and score of a game row.
func (s *Store) GameStatus(ctx context.Context, gameID int64) (string, int, error) {
	var status string
	var score int
	err := s.db.QueryRow(ctx, `SELECT status, score FROM games WHERE id = $1`, gameID).Scan(&status, &score)
	if err != nil {
		return "", 0, fmt.Errorf("game status: %w", err)
	}
	return status, score, nil
}
