package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
)

type fakeCalendars struct {
	results []domain.SyncResult
	err     error
	calls   int
}

func (f *fakeCalendars) SyncAllCalendarSources(ctx context.Context) ([]domain.SyncResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeCatalog struct {
	results []domain.CatalogSyncResult
	err     error
}

func (f *fakeCatalog) SyncAllProducts(ctx context.Context) ([]domain.CatalogSyncResult, error) {
	return f.results, f.err
}

type fakeSocial struct {
	results []domain.TokenRefreshResult
	err     error
}

func (f *fakeSocial) RefreshAll(ctx context.Context) ([]domain.TokenRefreshResult, error) {
	return f.results, f.err
}

func jobOf[T river.JobArgs](args T) *river.Job[T] {
	return &river.Job[T]{JobRow: &rivertype.JobRow{ID: 7, Kind: args.Kind(), Attempt: 1}, Args: args}
}

func TestSyncCalendarsWorker_FetchFailureFailsJob(t *testing.T) {
	cal := &fakeCalendars{
		results: []domain.SyncResult{{SourceID: "a", Created: 2}, {SourceID: "b", FetchErr: "feed returned 503"}},
		err:     apperrors.NewRemoteError("fetch calendar feed", errors.New("status 503")),
	}
	err := NewSyncCalendarsWorker(cal).Work(context.Background(), jobOf(SyncCalendarsArgs{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRemote)
	assert.Equal(t, 1, cal.calls)
}

func TestSyncCalendarsWorker_ItemErrorsDoNotFailJob(t *testing.T) {
	cal := &fakeCalendars{results: []domain.SyncResult{{SourceID: "a", Errors: []domain.ItemError{{ExternalID: "uid-1", Message: "bad"}}}}}
	assert.NoError(t, NewSyncCalendarsWorker(cal).Work(context.Background(), jobOf(SyncCalendarsArgs{})))
}

func TestSyncCatalogWorker(t *testing.T) {
	ok := &fakeCatalog{results: []domain.CatalogSyncResult{{ProductID: "p1"}}}
	assert.NoError(t, NewSyncCatalogWorker(ok).Work(context.Background(), jobOf(SyncCatalogArgs{})))

	failing := &fakeCatalog{err: apperrors.NewRemoteError("printify get product", errors.New("timeout"))}
	assert.ErrorIs(t, NewSyncCatalogWorker(failing).Work(context.Background(), jobOf(SyncCatalogArgs{})), apperrors.ErrRemote)
}

func TestRefreshSocialTokensWorker_PerAccountFailureIsNotFatal(t *testing.T) {
	social := &fakeSocial{results: []domain.TokenRefreshResult{
		{AccountName: "club", Refreshed: true},
		{AccountName: "academy", Error: "token expired"},
	}}
	assert.NoError(t, NewRefreshSocialTokensWorker(social).Work(context.Background(), jobOf(RefreshSocialTokensArgs{})))

	broken := &fakeSocial{err: errors.New("failed to list credentials")}
	assert.Error(t, NewRefreshSocialTokensWorker(broken).Work(context.Background(), jobOf(RefreshSocialTokensArgs{})))
}

func TestPeriodicJobs(t *testing.T) {
	jobs := PeriodicJobs(Schedule{SyncInterval: time.Hour, TokenRefreshInterval: 24 * time.Hour})
	assert.Len(t, jobs, 3)
}

func TestArgsAreUniquePerPeriod(t *testing.T) {
	for _, args := range []interface {
		river.JobArgs
		InsertOpts() river.InsertOpts
	}{SyncCalendarsArgs{}, SyncCatalogArgs{}, RefreshSocialTokensArgs{}} {
		opts := args.InsertOpts()
		assert.Equal(t, uniquePeriod, opts.UniqueOpts.ByPeriod, args.Kind())
		assert.Positive(t, opts.MaxAttempts, args.Kind())
	}
}
