package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/middleware"
)

type CalendarSyncer interface {
	SyncAllCalendarSources(ctx context.Context) ([]domain.SyncResult, error)
}

type CatalogSyncer interface {
	SyncAllProducts(ctx context.Context) ([]domain.CatalogSyncResult, error)
}

type TokenRefresher interface {
	RefreshAll(ctx context.Context) ([]domain.TokenRefreshResult, error)
}

// SyncCalendarsWorker reconciles every calendar source. A fetch-level failure
// fails the job so River retries it; item failures are only logged.
type SyncCalendarsWorker struct {
	river.WorkerDefaults[SyncCalendarsArgs]
	calendars CalendarSyncer
}

func NewSyncCalendarsWorker(c CalendarSyncer) *SyncCalendarsWorker {
	return &SyncCalendarsWorker{calendars: c}
}

func (w *SyncCalendarsWorker) Work(ctx context.Context, job *river.Job[SyncCalendarsArgs]) error {
	logger := jobLogger(ctx, job.JobRow.ID, job.Kind, job.Attempt)
	results, err := w.calendars.SyncAllCalendarSources(ctx)
	for _, r := range results {
		logger.Info("Calendar source synced", slog.String("source_id", r.SourceID),
			slog.Int("created", r.Created), slog.Int("updated", r.Updated), slog.Int("skipped", r.Skipped),
			slog.Int("orphaned", r.Orphaned), slog.Int("item_errors", len(r.Errors)))
	}
	if err != nil {
		return fmt.Errorf("calendar sync: %w", err)
	}
	return nil
}

type SyncCatalogWorker struct {
	river.WorkerDefaults[SyncCatalogArgs]
	catalog CatalogSyncer
}

func NewSyncCatalogWorker(c CatalogSyncer) *SyncCatalogWorker {
	return &SyncCatalogWorker{catalog: c}
}

func (w *SyncCatalogWorker) Work(ctx context.Context, job *river.Job[SyncCatalogArgs]) error {
	logger := jobLogger(ctx, job.JobRow.ID, job.Kind, job.Attempt)
	results, err := w.catalog.SyncAllProducts(ctx)
	for _, r := range results {
		logger.Info("Product synced", slog.String("product_id", r.ProductID),
			slog.Int("variants_created", r.Variants.Created), slog.Int("variants_updated", r.Variants.Updated),
			slog.Int("variants_orphaned", r.Variants.Orphaned), slog.Int("images_created", r.Images.Created))
	}
	if err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}
	return nil
}

// RefreshSocialTokensWorker refreshes every credential. Per-credential
// failures are recorded on the credential by the service and do not fail the job.
type RefreshSocialTokensWorker struct {
	river.WorkerDefaults[RefreshSocialTokensArgs]
	social TokenRefresher
}

func NewRefreshSocialTokensWorker(s TokenRefresher) *RefreshSocialTokensWorker {
	return &RefreshSocialTokensWorker{social: s}
}

func (w *RefreshSocialTokensWorker) Work(ctx context.Context, job *river.Job[RefreshSocialTokensArgs]) error {
	logger := jobLogger(ctx, job.JobRow.ID, job.Kind, job.Attempt)
	results, err := w.social.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("token refresh: %w", err)
	}
	for _, r := range results {
		if r.Error != "" {
			logger.Warn("Token refresh failed", slog.String("account", r.AccountName), slog.String("error", r.Error))
			continue
		}
		logger.Info("Token refreshed", slog.String("account", r.AccountName))
	}
	return nil
}

func jobLogger(ctx context.Context, id int64, kind string, attempt int) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx).With(slog.Int64("job_id", id), slog.String("kind", kind), slog.Int("attempt", attempt))
}
