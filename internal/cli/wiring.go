package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/config"
	"trivia-game-service/internal/infra/memory"
	"trivia-game-service/internal/infra/postgres"
	redisinfra "trivia-game-service/internal/infra/redis"
)

// runtime holds the wired services and the connections to release on exit.
type runtime struct {
	games *app.GameService
	feed  *app.RankingFeed
	close func()
}

// buildRuntime picks Postgres or the in-memory store, and Redis or in-process
// caching, depending on which connections are configured.
func buildRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	var closers []func()

	var store app.Store
	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		store = postgres.NewStore(pool)
	} else {
		logger.Warn("postgres url not configured, using in-memory store")
		store = memory.NewStore()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	rankingTTL := config.TTLDuration(cfg.Game.RankingTTL, 30*time.Second)
	var ranking app.RankingCache
	var registry app.GameRegistry
	if redisClient != nil {
		ranking = redisinfra.NewRankingCache(redisClient, store, rankingTTL)
		registry = redisinfra.NewGameRegistry(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour), logger)
	} else {
		ranking = memory.NewRankingCache(store, rankingTTL)
		registry = memory.NewGameRegistry()
	}

	feed := app.NewRankingFeed()
	games := app.NewGameService(store, registry, ranking, feed, logger)

	return &runtime{
		games: games,
		feed:  feed,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
