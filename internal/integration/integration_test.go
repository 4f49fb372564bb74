package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/infra/postgres"
	infraredis "trivia-game-service/internal/infra/redis"
)

func TestGameLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applied, err := postgres.Migrate(ctx, pgURL)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("expected 3 migrations, got %v", applied)
	}

	pool, err := postgres.Connect(ctx, pgURL, 4)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	ranking := infraredis.NewRankingCache(redisClient, store, 5*time.Minute)
	registry := infraredis.NewGameRegistry(redisClient, 5*time.Minute, nil)
	service := app.NewGameService(store, registry, ranking, app.NewRankingFeed(), nil)

	if n, err := service.SetupInitialQuestions(ctx); err != nil || n != 30 {
		t.Fatalf("setup questions: n=%d err=%v", n, err)
	}

	bob, err := service.StartGame(ctx, "Bob")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := domain.CheckStratified(bob.Questions); err != nil {
		t.Fatalf("sample from postgres not stratified: %v", err)
	}
	alice, err := service.StartGame(ctx, "Alice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	carol, err := service.StartGame(ctx, "Carol")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := service.FinishGame(ctx, bob, 7000); err != nil {
		t.Fatalf("finish bob: %v", err)
	}
	if _, err := service.FinishGame(ctx, alice, 3000); err != nil {
		t.Fatalf("finish alice: %v", err)
	}
	if _, err := service.FinishGame(ctx, bob, 1); err == nil {
		t.Fatalf("expected stale finish to be refused")
	}
	if _, err := service.DropGame(ctx, carol); err != nil {
		t.Fatalf("drop carol: %v", err)
	}

	status, score, err := store.GameStatus(ctx, bob.ID)
	if err != nil {
		t.Fatalf("game status: %v", err)
	}
	if status != app.StatusCompleted || score != 7000 {
		t.Fatalf("expected completed game with 7000, got %s %d", status, score)
	}
	if _, _, err := store.GameStatus(ctx, carol.ID); err == nil {
		t.Fatalf("expected dropped game row deleted")
	}

	entries, err := service.GetGameRanking(ctx)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	want := []domain.RankingEntry{{Name: "Bob", Score: 7000}, {Name: "Alice", Score: 3000}}
	if len(entries) != len(want) || entries[0] != want[0] || entries[1] != want[1] {
		t.Fatalf("unexpected ranking %+v", entries)
	}
	if n, err := redisClient.Exists(ctx, infraredis.RankingKey).Result(); err != nil || n != 1 {
		t.Fatalf("expected ranking cached in redis, exists=%d err=%v", n, err)
	}

	if err := service.ClearAllGames(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ = service.GetGameRanking(ctx)
	if len(entries) != 0 {
		t.Fatalf("expected empty ranking after clear, got %+v", entries)
	}
	again, err := service.StartGame(ctx, "Dave")
	if err != nil {
		t.Fatalf("start after clear: %v", err)
	}
	if again.ID != 1 {
		t.Fatalf("expected game ids to restart at 1, got %d", again.ID)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
