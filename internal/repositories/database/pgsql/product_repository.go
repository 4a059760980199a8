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
	"github.com/jackc/pgx/v5"
)

type PgxProductRepository struct {
	BaseRepository
}

func newPgxProductRepository(pool DBPool) portsrepo.ProductRepository {
	return &PgxProductRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ProductRepository = (*PgxProductRepository)(nil)

const productColumns = `product_id, name, printify_product_id, price, inventory, last_synced_at, last_sync_count, last_error, created_at, created_by, last_updated_at, last_updated_by`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p                   domain.Product
		printifyID, lastErr sql.NullString
		lastSynced          sql.NullTime
	)
	err := row.Scan(&p.ProductID, &p.Name, &printifyID, &p.Price, &p.Inventory, &lastSynced, &p.LastSyncCount, &lastErr,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy)
	if err != nil {
		return domain.Product{}, err
	}
	p.PrintifyProductID = mapping.StringPtr(printifyID)
	p.LastSyncedAt = mapping.TimePtr(lastSynced)
	p.LastError = mapping.StringPtr(lastErr)
	return p, nil
}

func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`
	p, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	return &p, nil
}

// FindProductsByIDs returns the products that exist, keyed by ID. Missing IDs are simply absent.
func (r *PgxProductRepository) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, nonNilKeys(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]domain.Product, len(productIDs))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products[p.ProductID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *PgxProductRepository) ListPrintOnDemandProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE printify_product_id IS NOT NULL ORDER BY name, product_id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list print-on-demand products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *PgxProductRepository) DecrementInventoryInTx(ctx context.Context, tx pgx.Tx, productID string, quantity int, now time.Time) (int, error) {
	query := `
		UPDATE products
		SET inventory = inventory - $1, last_updated_at = $2, last_updated_by = $3
		WHERE product_id = $4
		RETURNING inventory;
	`
	var remaining int
	err := tx.QueryRow(ctx, query, quantity, now, domain.SystemActor, productID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to decrement inventory for product %s: %w", productID, err)
	}
	return remaining, nil
}

func (r *PgxProductRepository) SaveSyncSummary(ctx context.Context, productID string, summary domain.SyncSummary) error {
	query := `
		UPDATE products
		SET last_synced_at = $1, last_sync_count = $2, last_error = $3, last_updated_at = $1, last_updated_by = $4
		WHERE product_id = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, summary.SyncedAt, summary.Count, mapping.NullString(summary.Error), domain.SystemActor, productID)
	if err != nil {
		return fmt.Errorf("failed to save sync summary for product %s: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
