package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trivia-game-service/internal/domain"
)

// QuestionService validates new questions and draws stratified samples for games.
type QuestionService struct {
	questions QuestionRepository
	shuffler  *shuffler
}

// shuffler is a mutex-guarded random source shared by transaction-scoped copies.
type shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionService(questions QuestionRepository) *QuestionService {
	return &QuestionService{
		questions: questions,
		shuffler:  &shuffler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}
}

func (s *QuestionService) withRepository(questions QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions, shuffler: s.shuffler}
}

// RegisterQuestion validates and stores a question, returning it with its assigned id.
func (s *QuestionService) RegisterQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	question, err := in.Normalize()
	if err != nil {
		return domain.Question{}, err
	}
	id, err := s.questions.InsertQuestion(ctx, question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("register question: %w", err)
	}
	question.ID = id
	return question, nil
}

// GetRandomQuestions returns ten questions, 4 easy, 4 medium and 2 hard, in shuffled order.
// A bank that cannot fill every tier yields ErrNoQuestionsAvailable.
func (s *QuestionService) GetRandomQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.questions.SampleQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(rows) < domain.QuestionsPerGame {
		return nil, domain.ErrNoQuestionsAvailable
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q, err := questionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("map question %d: %w", row.ID, err)
		}
		questions = append(questions, q)
	}
	if err := domain.CheckStratified(questions); err != nil {
		return nil, domain.ErrNoQuestionsAvailable
	}

	s.shuffler.shuffle(questions)
	return questions, nil
}

// CountQuestions reports the size of the bank.
func (s *QuestionService) CountQuestions(ctx context.Context) (int, error) {
	n, err := s.questions.CountQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// ClearQuestions empties the bank.
func (s *QuestionService) ClearQuestions(ctx context.Context) error {
	if err := s.questions.ClearQuestions(ctx); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	return nil
}

func questionFromRow(row QuestionRow) (domain.Question, error) {
	level, err := domain.ParseDifficulty(row.Level)
	if err != nil {
		return domain.Question{}, err
	}
	answer, err := domain.ParseChoice(row.CorrectAnswer)
	if err != nil {
		return domain.Question{}, err
	}
	return domain.Question{
		ID:           row.ID,
		Level:        level,
		Statement:    row.Statement,
		AlternativeA: row.AlternativeA,
		AlternativeB: row.AlternativeB,
		AlternativeC: row.AlternativeC,
		AlternativeD: row.AlternativeD,
		Answer:       answer,
	}, nil
}

func (s *shuffler) shuffle(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
