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

type PgxSocialCredentialRepository struct {
	BaseRepository
}

func newPgxSocialCredentialRepository(pool DBPool) portsrepo.SocialCredentialRepository {
	return &PgxSocialCredentialRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SocialCredentialRepository = (*PgxSocialCredentialRepository)(nil)

const socialCredentialColumns = `credential_id, account_name, access_token, expires_at, last_refreshed_at, last_error, created_at, created_by, last_updated_at, last_updated_by`

func scanSocialCredential(row pgx.Row) (domain.SocialCredential, error) {
	var (
		c                      domain.SocialCredential
		expiresAt, refreshedAt sql.NullTime
		lastErr                sql.NullString
	)
	err := row.Scan(&c.CredentialID, &c.AccountName, &c.AccessToken, &expiresAt, &refreshedAt, &lastErr,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy)
	if err != nil {
		return domain.SocialCredential{}, err
	}
	c.ExpiresAt = mapping.TimePtr(expiresAt)
	c.LastRefreshedAt = mapping.TimePtr(refreshedAt)
	c.LastError = mapping.StringPtr(lastErr)
	return c, nil
}

func (r *PgxSocialCredentialRepository) FindCredentialByAccount(ctx context.Context, accountName string) (*domain.SocialCredential, error) {
	query := `SELECT ` + socialCredentialColumns + ` FROM social_credentials WHERE account_name = $1;`
	c, err := scanSocialCredential(r.Pool.QueryRow(ctx, query, accountName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find social credential for %s: %w", accountName, err)
	}
	return &c, nil
}

func (r *PgxSocialCredentialRepository) ListCredentials(ctx context.Context) ([]domain.SocialCredential, error) {
	query := `SELECT ` + socialCredentialColumns + ` FROM social_credentials ORDER BY account_name;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list social credentials: %w", err)
	}
	defer rows.Close()

	creds := []domain.SocialCredential{}
	for rows.Next() {
		c, err := scanSocialCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social credential row: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating social credential rows: %w", err)
	}
	return creds, nil
}

func (r *PgxSocialCredentialRepository) UpdateCredentialToken(ctx context.Context, credentialID string, token string, expiresAt time.Time, now time.Time) error {
	query := `
		UPDATE social_credentials
		SET access_token = $1, expires_at = $2, last_refreshed_at = $3, last_error = NULL,
			last_updated_at = $3, last_updated_by = $4
		WHERE credential_id = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, token, expiresAt, now, domain.SystemActor, credentialID)
	if err != nil {
		return fmt.Errorf("failed to store refreshed token for credential %s: %w", credentialID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSocialCredentialRepository) RecordRefreshError(ctx context.Context, credentialID string, message string, now time.Time) error {
	query := `
		UPDATE social_credentials
		SET last_error = $1, last_updated_at = $2, last_updated_by = $3
		WHERE credential_id = $4;
	`
	if _, err := r.Pool.Exec(ctx, query, message, now, domain.SystemActor, credentialID); err != nil {
		return fmt.Errorf("failed to record refresh error for credential %s: %w", credentialID, err)
	}
	return nil
}
