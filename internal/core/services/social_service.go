package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

const refreshLockPrefix = "social-token-refresh:"

// socialService refreshes long-lived social tokens. Refreshes of the same
// credential are collapsed in-process by singleflight and serialized across
// processes by the distributed lock, since two concurrent refreshes can
// invalidate each other's token.
type socialService struct {
	BaseService
	repo      portsrepo.SocialCredentialRepository
	refresher portssvc.TokenRefresher
	lock      portssvc.RefreshLock
	lockTTL   time.Duration
	group     singleflight.Group
}

func NewSocialService(repo portsrepo.SocialCredentialRepository, refresher portssvc.TokenRefresher, lock portssvc.RefreshLock, lockTTL time.Duration) portssvc.SocialTokenSvc {
	return &socialService{
		BaseService: newBaseService(),
		repo:        repo,
		refresher:   refresher,
		lock:        lock,
		lockTTL:     lockTTL,
	}
}

var _ portssvc.SocialTokenSvc = (*socialService)(nil)

func (s *socialService) RefreshToken(ctx context.Context, accountName string) (*domain.TokenRefreshResult, error) {
	v, err, shared := s.group.Do(accountName, func() (any, error) {
		return s.refresh(ctx, accountName)
	})
	if shared {
		s.LogDebug(ctx, "Joined in-flight token refresh", slog.String("account", accountName))
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.TokenRefreshResult), nil
}

func (s *socialService) refresh(ctx context.Context, accountName string) (*domain.TokenRefreshResult, error) {
	if s.refresher == nil {
		return nil, fmt.Errorf("%w: social token refresher is not configured", apperrors.ErrRemote)
	}
	cred, err := s.repo.FindCredentialByAccount(ctx, accountName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: social credential %s", apperrors.ErrNotFound, accountName)
		}
		return nil, fmt.Errorf("failed to load social credential: %w", err)
	}

	if s.lock != nil {
		release, acquired, err := s.lock.Acquire(ctx, refreshLockPrefix+cred.CredentialID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("%w: token refresh for %s is running elsewhere", apperrors.ErrConflict, accountName)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.LogError(ctx, err, "Failed to release refresh lock", slog.String("account", accountName))
			}
		}()
	}

	now := s.now()
	token, err := s.refresher.RefreshToken(ctx, cred.AccessToken)
	if err != nil {
		if recErr := s.repo.RecordRefreshError(ctx, cred.CredentialID, err.Error(), now); recErr != nil {
			s.LogError(ctx, recErr, "Failed to record token refresh error", slog.String("account", accountName))
		}
		s.LogError(ctx, err, "Social token refresh failed", slog.String("account", accountName))
		return nil, err
	}

	expiresAt := now.Add(token.ExpiresIn)
	if err := s.repo.UpdateCredentialToken(ctx, cred.CredentialID, token.AccessToken, expiresAt, now); err != nil {
		return nil, fmt.Errorf("failed to store refreshed token: %w", err)
	}
	s.LogInfo(ctx, "Social token refreshed", slog.String("account", accountName), slog.Time("expires_at", expiresAt))
	return &domain.TokenRefreshResult{AccountName: accountName, Refreshed: true, ExpiresAt: &expiresAt}, nil
}

// RefreshAll refreshes every credential. Per-account failures are reported in
// the results; the error is reserved for failing to list the credentials.
func (s *socialService) RefreshAll(ctx context.Context) ([]domain.TokenRefreshResult, error) {
	creds, err := s.repo.ListCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list social credentials: %w", err)
	}
	results := make([]domain.TokenRefreshResult, 0, len(creds))
	for _, c := range creds {
		res, err := s.RefreshToken(ctx, c.AccountName)
		if err != nil {
			results = append(results, domain.TokenRefreshResult{AccountName: c.AccountName, Error: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}
