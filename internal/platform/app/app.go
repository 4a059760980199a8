// Package app wires configuration, storage, external clients and services
// into one value shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/club_management_app/internal/adapters"
	"github.com/SscSPs/club_management_app/internal/core/services"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/platform/config"
	"github.com/SscSPs/club_management_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/club_management_app/pkg/database"
)

type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Services *portssvc.ServiceContainer
}

// New connects to Postgres (and Redis when configured) and builds the service container.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, err
	}

	clients, err := adapters.NewExternalClients(ctx, cfg, rdb)
	if err != nil {
		pool.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}

	repos := pgsql.NewRepositoryProvider(pool)
	return &App{
		Config:   cfg,
		Pool:     pool,
		Redis:    rdb,
		Services: services.NewServiceContainer(cfg, repos, clients),
	}, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("Error closing redis client", slog.String("error", err.Error()))
		}
	}
	database.ClosePgxPool(a.Pool)
}
