package services

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// SocialTokenSvc refreshes social feed tokens, one refresh per credential at a time.
type SocialTokenSvc interface {
	RefreshToken(ctx context.Context, accountName string) (*domain.TokenRefreshResult, error)
	RefreshAll(ctx context.Context) ([]domain.TokenRefreshResult, error)
}
