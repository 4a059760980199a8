package services

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/dto"
)

// CalendarSvcFacade manages calendar sources and the events mirrored from them.
// Sync methods return a non-nil error only for fetch-level failures; per-item
// failures are reported inside the result.
type CalendarSvcFacade interface {
	CreateCalendarSource(ctx context.Context, req dto.CreateCalendarSourceRequest, userID string) (*domain.CalendarSource, error)
	SyncCalendarSource(ctx context.Context, sourceID string) (*domain.SyncResult, error)
	SyncAllCalendarSources(ctx context.Context) ([]domain.SyncResult, error)
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	UpdateEvent(ctx context.Context, eventID string, req dto.UpdateEventRequest, userID string) (*domain.Event, error)
	ResetEventSync(ctx context.Context, eventID string, userID string) error
}

// CatalogSvcFacade syncs print-on-demand products and manages their variants.
type CatalogSvcFacade interface {
	SyncProduct(ctx context.Context, productID string) (*domain.CatalogSyncResult, error)
	SyncAllProducts(ctx context.Context) ([]domain.CatalogSyncResult, error)
	UpdateVariant(ctx context.Context, variantID string, req dto.UpdateVariantRequest) (*domain.ProductVariant, error)
	ResetVariantSync(ctx context.Context, variantID string) error
}
