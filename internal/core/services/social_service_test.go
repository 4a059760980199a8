package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/core/services"
)

func clubCredential() *domain.SocialCredential {
	return &domain.SocialCredential{CredentialID: "cred-1", AccountName: "club", AccessToken: "old-token"}
}

func TestRefreshToken_StoresNewTokenAndReleasesLock(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialRepository)
	refresher := new(MockTokenRefresher)
	lock := new(MockRefreshLock)
	svc := services.NewSocialService(repo, refresher, lock, time.Minute)

	repo.On("FindCredentialByAccount", ctx, "club").Return(clubCredential(), nil).Once()
	lock.On("Acquire", ctx, "social-token-refresh:cred-1", time.Minute).Return(true, nil).Once()
	refresher.On("RefreshToken", ctx, "old-token").Return(&domain.RefreshedToken{AccessToken: "new-token", ExpiresIn: 60 * 24 * time.Hour}, nil).Once()
	repo.On("UpdateCredentialToken", ctx, "cred-1", "new-token", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := svc.RefreshToken(ctx, "club")
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	require.NotNil(t, res.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), *res.ExpiresAt, time.Minute)
	assert.Equal(t, 1, lock.released)
	repo.AssertExpectations(t)
	refresher.AssertExpectations(t)
}

func TestRefreshToken_LockHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialRepository)
	refresher := new(MockTokenRefresher)
	lock := new(MockRefreshLock)
	svc := services.NewSocialService(repo, refresher, lock, time.Minute)

	repo.On("FindCredentialByAccount", ctx, "club").Return(clubCredential(), nil).Once()
	lock.On("Acquire", ctx, mock.Anything, time.Minute).Return(false, nil).Once()

	_, err := svc.RefreshToken(ctx, "club")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	refresher.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
	assert.Equal(t, 0, lock.released)
}

func TestRefreshToken_ProviderErrorIsRecorded(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialRepository)
	refresher := new(MockTokenRefresher)
	svc := services.NewSocialService(repo, refresher, nil, time.Minute)

	repo.On("FindCredentialByAccount", ctx, "club").Return(clubCredential(), nil).Once()
	refresher.On("RefreshToken", ctx, "old-token").Return(nil, errors.New("token expired")).Once()
	repo.On("RecordRefreshError", ctx, "cred-1", "token expired", mock.Anything).Return(nil).Once()

	_, err := svc.RefreshToken(ctx, "club")
	assert.Error(t, err)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateCredentialToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshAll_ReportsPerAccount(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialRepository)
	refresher := new(MockTokenRefresher)
	svc := services.NewSocialService(repo, refresher, nil, time.Minute)

	repo.On("ListCredentials", ctx).Return([]domain.SocialCredential{{AccountName: "club"}, {AccountName: "gone"}}, nil).Once()
	repo.On("FindCredentialByAccount", ctx, "club").Return(clubCredential(), nil).Once()
	repo.On("FindCredentialByAccount", ctx, "gone").Return(nil, apperrors.ErrNotFound).Once()
	refresher.On("RefreshToken", ctx, "old-token").Return(&domain.RefreshedToken{AccessToken: "new", ExpiresIn: time.Hour}, nil).Once()
	repo.On("UpdateCredentialToken", ctx, "cred-1", "new", mock.Anything, mock.Anything).Return(nil).Once()

	results, err := svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Refreshed)
	assert.False(t, results[1].Refreshed)
	assert.Contains(t, results[1].Error, "gone")
}

func TestRefreshAll_ListFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSocialRepository)
	svc := services.NewSocialService(repo, new(MockTokenRefresher), nil, time.Minute)

	repo.On("ListCredentials", ctx).Return(nil, errors.New("connection reset")).Once()

	results, err := svc.RefreshAll(ctx)
	assert.Error(t, err)
	assert.Nil(t, results)
}
