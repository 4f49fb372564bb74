package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/infra/memory"
)

type fixture struct {
	store    *memory.Store
	registry *memory.GameRegistry
	feed     *app.RankingFeed
	games    *app.GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	registry := memory.NewGameRegistry()
	feed := app.NewRankingFeed()
	games := app.NewGameService(store, registry, memory.NewRankingCache(store, time.Minute), feed, nil)
	return &fixture{store: store, registry: registry, feed: feed, games: games}
}

// seeded returns a fixture whose bank holds the built-in questions.
func seeded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	if _, err := f.games.SetupInitialQuestions(context.Background()); err != nil {
		t.Fatalf("setup questions: %v", err)
	}
	return f
}

func addQuestions(t *testing.T, questions *app.QuestionService, level domain.Difficulty, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := questions.RegisterQuestion(context.Background(), domain.QuestionInput{
			Level:         string(level),
			Statement:     fmt.Sprintf("%s question %d", level, i+1),
			AlternativeA:  "one",
			AlternativeB:  "two",
			AlternativeC:  "three",
			AlternativeD:  "four",
			CorrectAnswer: "a",
		})
		if err != nil {
			t.Fatalf("register question: %v", err)
		}
	}
}
