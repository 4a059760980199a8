package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// SyncStore is the local side of a reconciliation target keyed by
// (source_id, external_id).
type SyncStore[R domain.RemoteRecord] interface {
	// FindSyncRecord returns apperrors.ErrNotFound when no local row exists.
	FindSyncRecord(ctx context.Context, sourceID string, externalID string) (*domain.SyncRecord, error)

	// CreateFromRemote inserts a new row with is_locally_modified=false.
	CreateFromRemote(ctx context.Context, sourceID string, remote R, syncedAt time.Time) error

	// UpdateFromRemote overwrites mapped fields only and clears any orphan state.
	UpdateFromRemote(ctx context.Context, localID string, remote R, syncedAt time.Time) error

	// ClearOrphan drops the orphan flag of a locally modified row whose remote
	// record is back. Its edited fields, is_enabled included, are left alone.
	ClearOrphan(ctx context.Context, localID string, at time.Time) error

	// MarkOrphans applies policy to rows under sourceID whose external id is not
	// in seen and which are not already orphaned. Returns the number marked.
	MarkOrphans(ctx context.Context, sourceID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error)
}

// SyncSummaryRecorder persists the outcome of a pass on the sync source.
type SyncSummaryRecorder interface {
	SaveSyncSummary(ctx context.Context, sourceID string, summary domain.SyncSummary) error
}
