package pgsql

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxWebhookReceiptRepository struct {
	BaseRepository
}

func newPgxWebhookReceiptRepository(pool DBPool) portsrepo.WebhookReceiptRepository {
	return &PgxWebhookReceiptRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WebhookReceiptRepository = (*PgxWebhookReceiptRepository)(nil)

// RecordReceiptInTx claims the dedup key inside the caller's transaction, so
// the receipt commits or rolls back together with the state change it guards.
func (r *PgxWebhookReceiptRepository) RecordReceiptInTx(ctx context.Context, tx pgx.Tx, provider string, dedupKey string, eventType string, at time.Time) (bool, error) {
	query := `
		INSERT INTO webhook_receipts (provider, dedup_key, event_type, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, dedup_key) DO NOTHING;
	`
	cmdTag, err := tx.Exec(ctx, query, provider, dedupKey, eventType, at)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook receipt %s/%s: %w", provider, dedupKey, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
