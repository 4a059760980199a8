package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ProductRepository persists merch products
type ProductRepository interface {
	SyncSummaryRecorder
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
	FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
	ListPrintOnDemandProducts(ctx context.Context) ([]domain.Product, error)

	// DecrementInventoryInTx subtracts quantity with no floor and returns the new level.
	DecrementInventoryInTx(ctx context.Context, tx pgx.Tx, productID string, quantity int, now time.Time) (int, error)
}

// VariantRepository persists variants mirrored from the POD provider
type VariantRepository interface {
	SyncStore[domain.RemoteVariant]
	FindVariantByID(ctx context.Context, variantID string) (*domain.ProductVariant, error)
	FindVariantsByIDs(ctx context.Context, variantIDs []string) (map[string]domain.ProductVariant, error)
	UpdateVariantLocally(ctx context.Context, variantID string, patch domain.VariantPatch, now time.Time) (*domain.ProductVariant, error)
	ResetVariantLocalModification(ctx context.Context, variantID string, now time.Time) error
}

// ImageRepository persists product images mirrored from the POD provider
type ImageRepository interface {
	SyncStore[domain.RemoteImage]
}
