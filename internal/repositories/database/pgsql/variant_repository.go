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

type PgxVariantRepository struct {
	BaseRepository
}

func newPgxVariantRepository(pool DBPool) portsrepo.VariantRepository {
	return &PgxVariantRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VariantRepository = (*PgxVariantRepository)(nil)

const variantColumns = `variant_id, product_id, external_id, title, sku, price, is_available, is_enabled, is_locally_modified, last_synced_at`

func scanVariant(row pgx.Row) (domain.ProductVariant, error) {
	var (
		v          domain.ProductVariant
		lastSynced sql.NullTime
	)
	err := row.Scan(&v.VariantID, &v.ProductID, &v.ExternalID, &v.Title, &v.SKU, &v.Price,
		&v.IsAvailable, &v.IsEnabled, &v.IsLocallyModified, &lastSynced)
	if err != nil {
		return domain.ProductVariant{}, err
	}
	v.LastSyncedAt = mapping.TimePtr(lastSynced)
	return v, nil
}

func (r *PgxVariantRepository) FindSyncRecord(ctx context.Context, productID string, externalID string) (*domain.SyncRecord, error) {
	query := `
		SELECT variant_id, is_locally_modified, is_orphaned, sync_fingerprint, last_synced_at
		FROM product_variants WHERE product_id = $1 AND external_id = $2;
	`
	rec := domain.SyncRecord{SourceID: productID, ExternalID: externalID}
	var lastSynced sql.NullTime
	err := r.Pool.QueryRow(ctx, query, productID, externalID).
		Scan(&rec.LocalID, &rec.IsLocallyModified, &rec.IsOrphaned, &rec.Fingerprint, &lastSynced)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find variant %s/%s: %w", productID, externalID, err)
	}
	rec.LastSyncedAt = mapping.TimePtr(lastSynced)
	return &rec, nil
}

func (r *PgxVariantRepository) CreateFromRemote(ctx context.Context, productID string, remote domain.RemoteVariant, syncedAt time.Time) error {
	query := `
		INSERT INTO product_variants (variant_id, product_id, external_id, title, sku, price, is_available, is_enabled,
			sync_fingerprint, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), productID, remote.ExternalID, remote.Title, remote.SKU,
		remote.Price, remote.IsAvailable, remote.IsEnabled, remote.Fingerprint(), syncedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: variant %s/%s already exists", apperrors.ErrDuplicate, productID, remote.ExternalID)
		}
		return fmt.Errorf("failed to create variant %s/%s: %w", productID, remote.ExternalID, err)
	}
	return nil
}

func (r *PgxVariantRepository) UpdateFromRemote(ctx context.Context, variantID string, remote domain.RemoteVariant, syncedAt time.Time) error {
	query := `
		UPDATE product_variants
		SET title = $1, sku = $2, price = $3, is_available = $4, is_enabled = $5,
			sync_fingerprint = $6, is_orphaned = FALSE, last_synced_at = $7
		WHERE variant_id = $8;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, remote.Title, remote.SKU, remote.Price, remote.IsAvailable, remote.IsEnabled,
		remote.Fingerprint(), syncedAt, variantID)
	if err != nil {
		return fmt.Errorf("failed to update variant %s from catalog: %w", variantID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxVariantRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	query := `UPDATE product_variants SET is_orphaned = FALSE, last_synced_at = $1 WHERE variant_id = $2 AND is_orphaned;`
	if _, err := r.Pool.Exec(ctx, query, at, localID); err != nil {
		return fmt.Errorf("failed to clear orphan flag on variant %s: %w", localID, err)
	}
	return nil
}

// MarkOrphans flags variants missing from the catalog. DISABLE also takes them off sale.
func (r *PgxVariantRepository) MarkOrphans(ctx context.Context, productID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error) {
	query := `
		UPDATE product_variants
		SET is_orphaned = TRUE, is_enabled = CASE WHEN $1 THEN FALSE ELSE is_enabled END, last_synced_at = $2
		WHERE product_id = $3 AND NOT is_orphaned AND NOT (external_id = ANY($4));
	`
	cmdTag, err := r.Pool.Exec(ctx, query, policy == domain.OrphanDisable, at, productID, nonNilKeys(seen))
	if err != nil {
		return 0, fmt.Errorf("failed to mark orphaned variants for product %s: %w", productID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}

func (r *PgxVariantRepository) FindVariantByID(ctx context.Context, variantID string) (*domain.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE variant_id = $1;`
	v, err := scanVariant(r.Pool.QueryRow(ctx, query, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find variant %s: %w", variantID, err)
	}
	return &v, nil
}

func (r *PgxVariantRepository) FindVariantsByIDs(ctx context.Context, variantIDs []string) (map[string]domain.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE variant_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, nonNilKeys(variantIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find variants: %w", err)
	}
	defer rows.Close()

	variants := make(map[string]domain.ProductVariant, len(variantIDs))
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant row: %w", err)
		}
		variants[v.VariantID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variant rows: %w", err)
	}
	return variants, nil
}

func (r *PgxVariantRepository) UpdateVariantLocally(ctx context.Context, variantID string, patch domain.VariantPatch, _ time.Time) (*domain.ProductVariant, error) {
	query := `
		UPDATE product_variants
		SET title = COALESCE($1, title),
			price = COALESCE($2, price),
			is_enabled = COALESCE($3, is_enabled),
			is_locally_modified = TRUE
		WHERE variant_id = $4
		RETURNING ` + variantColumns + `;
	`
	v, err := scanVariant(r.Pool.QueryRow(ctx, query, patch.Title, patch.Price, patch.IsEnabled, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update variant %s: %w", variantID, err)
	}
	return &v, nil
}

func (r *PgxVariantRepository) ResetVariantLocalModification(ctx context.Context, variantID string, _ time.Time) error {
	query := `UPDATE product_variants SET is_locally_modified = FALSE, sync_fingerprint = '' WHERE variant_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, variantID)
	if err != nil {
		return fmt.Errorf("failed to reset variant %s: %w", variantID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
