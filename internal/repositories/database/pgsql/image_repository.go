package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/club_management_app/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgxImageRepository struct {
	BaseRepository
}

func newPgxImageRepository(pool DBPool) portsrepo.ImageRepository {
	return &PgxImageRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ImageRepository = (*PgxImageRepository)(nil)

func (r *PgxImageRepository) FindSyncRecord(ctx context.Context, productID string, src string) (*domain.SyncRecord, error) {
	query := `
		SELECT image_id, is_locally_modified, is_orphaned, sync_fingerprint, last_synced_at
		FROM product_images WHERE product_id = $1 AND external_id = $2;
	`
	rec := domain.SyncRecord{SourceID: productID, ExternalID: src}
	var lastSynced sql.NullTime
	err := r.Pool.QueryRow(ctx, query, productID, src).
		Scan(&rec.LocalID, &rec.IsLocallyModified, &rec.IsOrphaned, &rec.Fingerprint, &lastSynced)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find image %s for product %s: %w", src, productID, err)
	}
	rec.LastSyncedAt = mapping.TimePtr(lastSynced)
	return &rec, nil
}

func (r *PgxImageRepository) CreateFromRemote(ctx context.Context, productID string, remote domain.RemoteImage, syncedAt time.Time) error {
	query := `
		INSERT INTO product_images (image_id, product_id, external_id, position, is_default, variant_external_ids,
			sync_fingerprint, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), productID, remote.Src, remote.Position, remote.IsDefault,
		nonNilKeys(remote.VariantExternalID), remote.Fingerprint(), syncedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: image %s already exists for product %s", apperrors.ErrDuplicate, remote.Src, productID)
		}
		return fmt.Errorf("failed to create image %s for product %s: %w", remote.Src, productID, err)
	}
	return nil
}

func (r *PgxImageRepository) UpdateFromRemote(ctx context.Context, imageID string, remote domain.RemoteImage, syncedAt time.Time) error {
	query := `
		UPDATE product_images
		SET position = $1, is_default = $2, variant_external_ids = $3, is_enabled = TRUE, is_orphaned = FALSE,
			sync_fingerprint = $4, last_synced_at = $5
		WHERE image_id = $6;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, remote.Position, remote.IsDefault, nonNilKeys(remote.VariantExternalID),
		remote.Fingerprint(), syncedAt, imageID)
	if err != nil {
		return fmt.Errorf("failed to update image %s from catalog: %w", imageID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxImageRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	query := `UPDATE product_images SET is_orphaned = FALSE, last_synced_at = $1 WHERE image_id = $2 AND is_orphaned;`
	if _, err := r.Pool.Exec(ctx, query, at, localID); err != nil {
		return fmt.Errorf("failed to clear orphan flag on image %s: %w", localID, err)
	}
	return nil
}

func (r *PgxImageRepository) MarkOrphans(ctx context.Context, productID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error) {
	query := `
		UPDATE product_images
		SET is_orphaned = TRUE, is_enabled = CASE WHEN $1 THEN FALSE ELSE is_enabled END, last_synced_at = $2
		WHERE product_id = $3 AND NOT is_orphaned AND NOT (external_id = ANY($4));
	`
	cmdTag, err := r.Pool.Exec(ctx, query, policy == domain.OrphanDisable, at, productID, nonNilKeys(seen))
	if err != nil {
		return 0, fmt.Errorf("failed to mark orphaned images for product %s: %w", productID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}
