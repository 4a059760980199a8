package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventRepoWithMock(t *testing.T) (*PgxEventRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPgxEventRepository(mock).(*PgxEventRepository), mock
}

func TestFindSyncRecord(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	synced := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT event_id, is_locally_modified, is_orphaned, sync_fingerprint, last_synced_at\s+FROM events WHERE source_id = \$1 AND external_id = \$2`).
		WithArgs("src-1", "uid-1").
		WillReturnRows(pgxmock.NewRows([]string{"event_id", "is_locally_modified", "is_orphaned", "sync_fingerprint", "last_synced_at"}).
			AddRow("evt-1", true, false, "abc", synced))

	rec, err := repo.FindSyncRecord(context.Background(), "src-1", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", rec.LocalID)
	assert.True(t, rec.IsLocallyModified)
	assert.Equal(t, "abc", rec.Fingerprint)
	require.NotNil(t, rec.LastSyncedAt)
	assert.True(t, synced.Equal(*rec.LastSyncedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSyncRecord_NotFound(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)

	mock.ExpectQuery(`FROM events WHERE source_id = \$1 AND external_id = \$2`).
		WithArgs("src-1", "uid-new").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindSyncRecord(context.Background(), "src-1", "uid-new")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkOrphans_OnlyUnseenRowsOfSource(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE events\s+SET is_orphaned = TRUE`).
		WithArgs(at, domain.SystemActor, "src-1", []string{"uid-1", "uid-2"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := repo.MarkOrphans(context.Background(), "src-1", []string{"uid-1", "uid-2"}, domain.OrphanFlag, at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFromRemote_ClearsOrphanFlag(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	remote := domain.RemoteEvent{UID: "uid-1", Summary: "U12 training", Start: at.Add(48 * time.Hour)}

	mock.ExpectExec(`(?s)UPDATE events\s+SET title = \$1, .*is_orphaned = FALSE`).
		WithArgs(remote.Summary, remote.Description, remote.Location, remote.Start, pgxmock.AnyArg(),
			remote.Fingerprint(), at, domain.SystemActor, "evt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateFromRemote(context.Background(), "evt-1", remote, at)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func eventRow(at time.Time, locallyModified bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"event_id", "source_id", "external_id", "title", "description", "location",
		"starts_at", "ends_at", "registration_fee", "is_dues_bearing", "is_locally_modified", "is_orphaned",
		"sync_fingerprint", "last_synced_at", "created_at", "created_by", "last_updated_at", "last_updated_by"}).
		AddRow("evt-1", "src-1", "uid-1", "Summer camp", "", "Field 2", at, nil,
			decimal.NewFromInt(75), true, locallyModified, false,
			"abc", at, at, domain.SystemActor, at, "treasurer")
}

func TestUpdateEventLocally_FeeOnlyKeepsSyncing(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fee := decimal.NewFromInt(75)
	dues := true
	patch := domain.EventPatch{RegistrationFee: &fee, IsDuesBearing: &dues}

	mock.ExpectQuery(`(?s)UPDATE events.*is_locally_modified = is_locally_modified OR \$8`).
		WithArgs(patch.Title, patch.Description, patch.Location, patch.StartsAt, patch.EndsAt,
			patch.RegistrationFee, patch.IsDuesBearing, false, at, "treasurer", "evt-1").
		WillReturnRows(eventRow(at, false))

	e, err := repo.UpdateEventLocally(context.Background(), "evt-1", patch, "treasurer", at)
	require.NoError(t, err)
	assert.False(t, e.IsLocallyModified)
	assert.True(t, e.RegistrationFee.Equal(fee))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventLocally_SyncedFieldSetsFlag(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	location := "Field 2"
	patch := domain.EventPatch{Location: &location}

	mock.ExpectQuery(`(?s)UPDATE events.*is_locally_modified = is_locally_modified OR \$8`).
		WithArgs(patch.Title, patch.Description, patch.Location, patch.StartsAt, patch.EndsAt,
			patch.RegistrationFee, patch.IsDuesBearing, true, at, "treasurer", "evt-1").
		WillReturnRows(eventRow(at, true))

	e, err := repo.UpdateEventLocally(context.Background(), "evt-1", patch, "treasurer", at)
	require.NoError(t, err)
	assert.True(t, e.IsLocallyModified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearOrphan_LeavesLocalEditsAlone(t *testing.T) {
	repo, mock := newEventRepoWithMock(t)
	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE events SET is_orphaned = FALSE, last_updated_at = \$1 WHERE event_id = \$2 AND is_orphaned`).
		WithArgs(at, "evt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.ClearOrphan(context.Background(), "evt-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
