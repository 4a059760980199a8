package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
)

// catalogService mirrors print-on-demand products in two passes, variants
// then images, and records a combined summary on the product.
type catalogService struct {
	BaseService
	productRepo portsrepo.ProductRepository
	variantRepo portsrepo.VariantRepository
	catalog     portssvc.CatalogProvider
	variants    *Reconciler[domain.RemoteVariant]
	images      *Reconciler[domain.RemoteImage]
}

func NewCatalogService(productRepo portsrepo.ProductRepository, variantRepo portsrepo.VariantRepository, imageRepo portsrepo.ImageRepository, catalog portssvc.CatalogProvider, policy domain.OrphanPolicy) portssvc.CatalogSvcFacade {
	return &catalogService{
		BaseService: newBaseService(),
		productRepo: productRepo,
		variantRepo: variantRepo,
		catalog:     catalog,
		variants:    NewReconciler[domain.RemoteVariant]("catalog_variants", variantRepo, nil, policy),
		images:      NewReconciler[domain.RemoteImage]("catalog_images", imageRepo, nil, policy),
	}
}

var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

func (s *catalogService) SyncProduct(ctx context.Context, productID string) (*domain.CatalogSyncResult, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsPrintOnDemand() {
		return nil, apperrors.NewBadRequestError("product is not print-on-demand")
	}
	return s.syncProduct(ctx, *product)
}

func (s *catalogService) syncProduct(ctx context.Context, product domain.Product) (*domain.CatalogSyncResult, error) {
	result := &domain.CatalogSyncResult{ProductID: product.ProductID}
	logger := s.GetLogger(ctx).With(slog.String("product_id", product.ProductID))

	if s.catalog == nil {
		return result, fmt.Errorf("%w: catalog client is not configured", apperrors.ErrRemote)
	}

	remote, err := s.catalog.GetProductCatalog(ctx, *product.PrintifyProductID)
	if err != nil {
		now := s.now()
		result.Variants = domain.SyncResult{SourceID: product.ProductID, FetchErr: err.Error(), StartedAt: now, EndedAt: now}
		result.Images = result.Variants
		s.saveSummary(ctx, logger, result)
		logger.Error("Catalog fetch failed, no orphans marked", slog.String("error", err.Error()))
		return result, apperrors.NewRemoteError("fetch catalog", err)
	}

	result.Variants, err = s.variants.Reconcile(ctx, sliceSource[domain.RemoteVariant]{id: product.ProductID, items: remote.Variants})
	if err != nil {
		s.saveSummary(ctx, logger, result)
		return result, err
	}
	result.Images, err = s.images.Reconcile(ctx, sliceSource[domain.RemoteImage]{id: product.ProductID, items: remote.Images})
	s.saveSummary(ctx, logger, result)
	return result, err
}

func (s *catalogService) saveSummary(ctx context.Context, logger *slog.Logger, result *domain.CatalogSyncResult) {
	if err := s.productRepo.SaveSyncSummary(ctx, result.ProductID, result.Summary()); err != nil {
		logger.Error("Failed to save catalog sync summary", slog.String("error", err.Error()))
	}
}

// SyncAllProducts syncs every print-on-demand product, continuing past failures.
func (s *catalogService) SyncAllProducts(ctx context.Context) ([]domain.CatalogSyncResult, error) {
	products, err := s.productRepo.ListPrintOnDemandProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list print-on-demand products: %w", err)
	}
	results := make([]domain.CatalogSyncResult, 0, len(products))
	var firstErr error
	for _, p := range products {
		result, err := s.syncProduct(ctx, p)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return results, firstErr
}

func (s *catalogService) UpdateVariant(ctx context.Context, variantID string, req dto.UpdateVariantRequest) (*domain.ProductVariant, error) {
	patch := req.ToPatch()
	if patch.IsEmpty() {
		return nil, apperrors.NewBadRequestError("no fields to update")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperrors.NewBadRequestError("price cannot be negative")
	}
	variant, err := s.variantRepo.UpdateVariantLocally(ctx, variantID, patch, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: variant %s", apperrors.ErrNotFound, variantID)
		}
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}
	return variant, nil
}

func (s *catalogService) ResetVariantSync(ctx context.Context, variantID string) error {
	if err := s.variantRepo.ResetVariantLocalModification(ctx, variantID, s.now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: variant %s", apperrors.ErrNotFound, variantID)
		}
		return fmt.Errorf("failed to reset variant: %w", err)
	}
	return nil
}
