package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// SocialCredentialRepository persists social feed tokens
type SocialCredentialRepository interface {
	FindCredentialByAccount(ctx context.Context, accountName string) (*domain.SocialCredential, error)
	ListCredentials(ctx context.Context) ([]domain.SocialCredential, error)
	UpdateCredentialToken(ctx context.Context, credentialID string, token string, expiresAt time.Time, now time.Time) error
	RecordRefreshError(ctx context.Context, credentialID string, message string, now time.Time) error
}
