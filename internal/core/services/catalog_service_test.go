package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/core/services"
	"github.com/SscSPs/club_management_app/internal/dto"
)

type catalogFixture struct {
	products *MockProductRepository
	variants *MockVariantRepository
	images   *MockImageRepository
	provider *MockCatalogProvider
}

func newCatalogFixture() catalogFixture {
	return catalogFixture{
		products: new(MockProductRepository),
		variants: new(MockVariantRepository),
		images:   new(MockImageRepository),
		provider: new(MockCatalogProvider),
	}
}

func podProduct() *domain.Product {
	pf := "pf-123"
	return &domain.Product{ProductID: "jersey", Name: "Home jersey", PrintifyProductID: &pf}
}

func TestSyncProduct_FetchFailureMarksNoOrphans(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := services.NewCatalogService(f.products, f.variants, f.images, f.provider, domain.OrphanDisable)

	f.products.On("FindProductByID", ctx, "jersey").Return(podProduct(), nil).Once()
	f.provider.On("GetProductCatalog", ctx, "pf-123").Return(nil, errors.New("printify: 503")).Once()
	f.products.On("SaveSyncSummary", ctx, "jersey", mock.MatchedBy(func(s domain.SyncSummary) bool {
		return s.Error != nil && *s.Error == "printify: 503"
	})).Return(nil).Once()

	result, err := svc.SyncProduct(ctx, "jersey")
	assert.ErrorIs(t, err, apperrors.ErrRemote)
	require.NotNil(t, result)
	assert.Equal(t, "printify: 503", result.Variants.FetchErr)
	f.variants.AssertNotCalled(t, "MarkOrphans", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.images.AssertNotCalled(t, "MarkOrphans", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.products.AssertExpectations(t)
}

func TestSyncProduct_RunsVariantAndImagePasses(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := services.NewCatalogService(f.products, f.variants, f.images, f.provider, domain.OrphanDisable)

	remoteVariant := domain.RemoteVariant{ExternalID: "101", Title: "Youth M", Price: decimal.RequireFromString("24.00"), IsAvailable: true, IsEnabled: true}
	edited := domain.RemoteVariant{ExternalID: "102", Title: "Youth L", Price: decimal.RequireFromString("24.00"), IsAvailable: true, IsEnabled: true}
	image := domain.RemoteImage{Src: "https://images.printify.example/mock-1.png", Position: "front", IsDefault: true, VariantExternalID: []string{"101", "102"}}

	f.products.On("FindProductByID", ctx, "jersey").Return(podProduct(), nil).Once()
	f.provider.On("GetProductCatalog", ctx, "pf-123").Return(&domain.RemoteProduct{
		ExternalID: "pf-123",
		Variants:   []domain.RemoteVariant{remoteVariant, edited},
		Images:     []domain.RemoteImage{image},
	}, nil).Once()

	f.variants.On("FindSyncRecord", ctx, "jersey", "101").Return(nil, apperrors.ErrNotFound).Once()
	f.variants.On("CreateFromRemote", ctx, "jersey", remoteVariant, mock.Anything).Return(nil).Once()
	f.variants.On("FindSyncRecord", ctx, "jersey", "102").Return(&domain.SyncRecord{LocalID: "v-102", IsLocallyModified: true}, nil).Once()
	f.variants.On("MarkOrphans", ctx, "jersey", mock.MatchedBy(func(seen []string) bool {
		return assert.ElementsMatch(t, []string{"101", "102"}, seen)
	}), domain.OrphanDisable, mock.Anything).Return(1, nil).Once()

	f.images.On("FindSyncRecord", ctx, "jersey", image.Src).Return(&domain.SyncRecord{LocalID: "img-1", Fingerprint: image.Fingerprint()}, nil).Once()
	f.images.On("MarkOrphans", ctx, "jersey", []string{image.Src}, domain.OrphanDisable, mock.Anything).Return(0, nil).Once()

	f.products.On("SaveSyncSummary", ctx, "jersey", mock.MatchedBy(func(s domain.SyncSummary) bool {
		return s.Error == nil && s.Count == 1
	})).Return(nil).Once()

	result, err := svc.SyncProduct(ctx, "jersey")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Variants.Created)
	assert.Equal(t, 1, result.Variants.Skipped)
	assert.Equal(t, 1, result.Variants.Orphaned)
	assert.Equal(t, 1, result.Images.Unchanged)
	f.variants.AssertNotCalled(t, "UpdateFromRemote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.variants.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.products.AssertExpectations(t)
}

func TestSyncProduct_RejectsStockedProduct(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := services.NewCatalogService(f.products, f.variants, f.images, f.provider, domain.OrphanDisable)
	f.products.On("FindProductByID", ctx, "sticker").Return(&domain.Product{ProductID: "sticker"}, nil).Once()

	_, err := svc.SyncProduct(ctx, "sticker")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.provider.AssertNotCalled(t, "GetProductCatalog", mock.Anything, mock.Anything)
}

func TestUpdateVariant_RejectsEmptyPatch(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := services.NewCatalogService(f.products, f.variants, f.images, f.provider, domain.OrphanDisable)

	_, err := svc.UpdateVariant(ctx, "v-1", dto.UpdateVariantRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.variants.AssertNotCalled(t, "UpdateVariantLocally", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
