package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// Schedule is how often each periodic job is enqueued.
type Schedule struct {
	SyncInterval         time.Duration
	TokenRefreshInterval time.Duration
}

// NewWorkers registers a worker for every job kind.
func NewWorkers(services *portssvc.ServiceContainer) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewSyncCalendarsWorker(services.Calendar))
	river.AddWorker(workers, NewSyncCatalogWorker(services.Catalog))
	river.AddWorker(workers, NewRefreshSocialTokensWorker(services.Social))
	return workers
}

// PeriodicJobs builds the recurring schedule. Sync jobs run on start so a
// fresh deploy mirrors upstream immediately.
func PeriodicJobs(s Schedule) []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(river.PeriodicInterval(s.SyncInterval),
			func() (river.JobArgs, *river.InsertOpts) { return SyncCalendarsArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true}),
		river.NewPeriodicJob(river.PeriodicInterval(s.SyncInterval),
			func() (river.JobArgs, *river.InsertOpts) { return SyncCatalogArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true}),
		river.NewPeriodicJob(river.PeriodicInterval(s.TokenRefreshInterval),
			func() (river.JobArgs, *river.InsertOpts) { return RefreshSocialTokensArgs{}, nil },
			nil),
	}
}

// Migrate applies River's own schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("river migrate up failed: %w", err)
	}
	return nil
}

// NewClient builds a River client that works jobs and enqueues the periodic schedule.
func NewClient(pool *pgxpool.Pool, services *portssvc.ServiceContainer, s Schedule, logger *slog.Logger) (*river.Client[pgx.Tx], error) {
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 4},
		},
		Workers:      NewWorkers(services),
		PeriodicJobs: PeriodicJobs(s),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	return client, nil
}
