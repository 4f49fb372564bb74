package app

import (
	"context"
	"fmt"
	"log/slog"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/seed"
)

// GameService coordinates the game lifecycle across users, questions, the
// store and the active-game registry.
type GameService struct {
	store     Store
	registry  GameRegistry
	users     *UserService
	questions *QuestionService
	feed      *RankingFeed
	log       *slog.Logger
}

func NewGameService(store Store, registry GameRegistry, ranking RankingCache, feed *RankingFeed, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{
		store:     store,
		registry:  registry,
		users:     NewUserService(store, ranking, logger),
		questions: NewQuestionService(store),
		feed:      feed,
		log:       logger,
	}
}

// Users exposes the user service sharing this service's store and cache.
func (s *GameService) Users() *UserService {
	return s.users
}

// Questions exposes the question service sharing this service's store.
func (s *GameService) Questions() *QuestionService {
	return s.questions
}

// StartGame registers the player, draws ten questions and persists the game
// in one transaction, then adds the running game to the registry.
func (s *GameService) StartGame(ctx context.Context, userName string) (domain.Game, error) {
	var game domain.Game
	err := s.store.InTx(ctx, func(tx Store) error {
		user, err := s.users.withRepository(tx).RegisterUser(ctx, userName)
		if err != nil {
			return err
		}
		questions, err := s.questions.withRepository(tx).GetRandomQuestions(ctx)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
		gameID, err := tx.InsertGame(ctx, user.ID, ids)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		game, err = domain.NewGame().Start(gameID, user, questions)
		return err
	})
	if err != nil {
		return domain.Game{}, fmt.Errorf("start game: %w", err)
	}

	s.registry.Add(game)
	s.users.invalidate(ctx)
	s.log.Info("game started", "game_id", game.ID, "user_id", game.User.ID)
	return game, nil
}

// FinishGame completes a running game with the final score. The player's
// score and the game row are written together; the input value is not modified.
func (s *GameService) FinishGame(ctx context.Context, game domain.Game, score int) (domain.Game, error) {
	finished, err := game.Finish(score)
	if err != nil {
		return game, fmt.Errorf("finish game: %w", err)
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		user, err := s.users.withRepository(tx).UpdateScore(ctx, finished.User, finished.Score)
		if err != nil {
			return err
		}
		finished.User = user

		ok, err := tx.UpdateGameScore(ctx, finished.ID, finished.Score)
		if err != nil {
			return fmt.Errorf("update game score: %w", err)
		}
		if !ok {
			return domain.ErrGameNotInProgress
		}
		return nil
	})
	if err != nil {
		return game, fmt.Errorf("finish game: %w", err)
	}

	s.registry.Remove(finished.Key())
	s.log.Info("game finished", "game_id", finished.ID, "user_id", finished.User.ID, "score", finished.Score)
	s.rankingChanged(ctx)
	return finished, nil
}

// DropGame abandons a running game: its row and its player are deleted
// together, and only then is the reset game returned.
func (s *GameService) DropGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	dropped, err := game.Drop()
	if err != nil {
		return game, fmt.Errorf("drop game: %w", err)
	}

	err = s.store.InTx(ctx, func(tx Store) error {
		ok, err := tx.DeleteInProgressGame(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		if !ok {
			return domain.ErrGameNotInProgress
		}
		return s.users.withRepository(tx).DeleteUser(ctx, game.User)
	})
	if err != nil {
		return game, fmt.Errorf("drop game: %w", err)
	}

	s.registry.Remove(game.Key())
	s.log.Info("game dropped", "game_id", game.ID, "user_id", game.User.ID)
	s.rankingChanged(ctx)
	return dropped, nil
}

// ActiveGame looks a running game up by its registry key.
func (s *GameService) ActiveGame(key string) (domain.Game, error) {
	game, ok := s.registry.Get(key)
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

// GetGameRanking returns the leaderboard.
func (s *GameService) GetGameRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	return s.users.GetRanking(ctx)
}

// RegisterQuestion adds one question to the bank.
func (s *GameService) RegisterQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	return s.questions.RegisterQuestion(ctx, in)
}

// SetupInitialQuestions registers the built-in bank in one transaction and
// returns how many questions were added.
func (s *GameService) SetupInitialQuestions(ctx context.Context) (int, error) {
	inputs, err := seed.Questions()
	if err != nil {
		return 0, err
	}
	err = s.store.InTx(ctx, func(tx Store) error {
		questions := s.questions.withRepository(tx)
		for i, in := range inputs {
			if _, err := questions.RegisterQuestion(ctx, in); err != nil {
				return fmt.Errorf("seed question %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("setup questions: %w", err)
	}
	s.log.Info("question bank seeded", "count", len(inputs))
	return len(inputs), nil
}

// EnsureQuestions seeds the built-in bank only when the store has no questions.
func (s *GameService) EnsureQuestions(ctx context.Context) error {
	n, err := s.questions.CountQuestions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = s.SetupInitialQuestions(ctx)
	return err
}

// ClearQuestions empties the question bank.
func (s *GameService) ClearQuestions(ctx context.Context) error {
	return s.questions.ClearQuestions(ctx)
}

// ClearAllGames removes every game and player and empties the registry.
func (s *GameService) ClearAllGames(ctx context.Context) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		if err := tx.ClearGames(ctx); err != nil {
			return fmt.Errorf("clear games: %w", err)
		}
		return s.users.withRepository(tx).ClearUsers(ctx)
	})
	if err != nil {
		return err
	}
	s.registry.Clear()
	s.log.Info("all games cleared")
	s.rankingChanged(ctx)
	return nil
}

// rankingChanged runs after a committed score-changing operation: the cached
// ranking is dropped and, when someone is listening, a fresh snapshot is pushed.
func (s *GameService) rankingChanged(ctx context.Context) {
	s.users.invalidate(ctx)
	if s.feed == nil || !s.feed.HasSubscribers() {
		return
	}
	entries, err := s.users.GetRanking(ctx)
	if err != nil {
		s.log.Warn("ranking refresh for feed failed", "err", err)
		return
	}
	s.feed.Publish(entries)
}
