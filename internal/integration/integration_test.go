package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"propboard/internal/app"
	pgstore "propboard/internal/infra/postgres"
	pgmigrations "propboard/internal/infra/postgres/migrations"
	redisstore "propboard/internal/infra/redis"
	"propboard/internal/registry"
)

func TestPostgresBoardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	exerciseBoard(t, ctx, pgstore.NewBlobStore(pool), pgstore.NewBlobStore(pool))
}

func TestRedisBoardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := goredis.NewClient(opts)
	defer client.Close()

	exerciseBoard(t, ctx,
		redisstore.NewBlobStore(client, redisstore.DefaultPrefix),
		redisstore.NewBlobStore(client, redisstore.DefaultPrefix),
	)
}

// exerciseBoard writes through one board and reads through a second board
// sharing the same backend, as two server processes would.
func exerciseBoard(t *testing.T, ctx context.Context, writer, reader app.BlobStore) {
	t.Helper()
	admin := app.NewBoard(registry.SuperBowlLX(), writer).OpenSession(true)

	if err := admin.SetPick(ctx, "bob", 2, "Heads"); err != nil {
		t.Fatalf("bob pick: %v", err)
	}
	if err := admin.SetPick(ctx, "tara", 2, "Tails"); err != nil {
		t.Fatalf("tara pick: %v", err)
	}
	if err := admin.SetAnswer(ctx, 2, "Tails"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	viewer := app.NewBoard(registry.SuperBowlLX(), reader)
	lb, err := viewer.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Standings) != 3 || lb.Standings[0].PlayerID != "tara" || lb.Standings[0].Score != 1 {
		t.Fatalf("expected tara leading with 1, got %+v", lb.Standings)
	}
	if lb.Standings[1].Rank != 2 || lb.Standings[2].Rank != 2 {
		t.Fatalf("expected bob and frank tied at 2, got %+v", lb.Standings)
	}

	if err := viewer.OpenSession(false).SetAnswer(ctx, 2, "Heads"); err != nil {
		t.Fatalf("unauthorized answer: %v", err)
	}
	answers, err := viewer.Answers(ctx)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if answers[2] != "Tails" {
		t.Fatalf("expected unauthorized write ignored, got %q", answers[2])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "board", "POSTGRES_PASSWORD": "boardpass", "POSTGRES_DB": "propboard"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://board:boardpass@%s:%s/propboard?sslmode=disable", host, port.Port())
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

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
