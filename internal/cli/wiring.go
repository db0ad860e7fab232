package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"propboard/internal/app"
	"propboard/internal/config"
	"propboard/internal/infra/memory"
	pgstore "propboard/internal/infra/postgres"
	redisstore "propboard/internal/infra/redis"
	"propboard/internal/infra/sqlite"
	"propboard/internal/registry"
)

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openBlobStore builds the configured backend. Postgres migrations run only
// when migrate is set. The returned close func is never nil.
func openBlobStore(ctx context.Context, cfg config.Config, logger *slog.Logger, migrate bool) (app.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("using in-memory store; state is lost on restart")
		return memory.NewBlobStore(), noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewBlobStore(client, cfg.Redis.Prefix), client.Close, nil
	case "postgres":
		if migrate {
			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return nil, noop, err
			}
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewBlobStore(pool), func() error { pool.Close(); return nil }, nil
	default:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
}

func newBoard(cfg config.Config, blobs app.BlobStore, logger *slog.Logger, metrics app.Metrics) *app.Board {
	return app.NewBoard(registry.SuperBowlLX(), blobs,
		app.WithLogger(logger),
		app.WithMetrics(metrics),
		app.WithStrictOptions(cfg.Strict()),
	)
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}
