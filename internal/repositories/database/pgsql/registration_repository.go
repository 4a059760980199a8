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

type PgxRegistrationRepository struct {
	BaseRepository
}

func newPgxRegistrationRepository(pool DBPool) portsrepo.RegistrationRepository {
	return &PgxRegistrationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RegistrationRepository = (*PgxRegistrationRepository)(nil)

const registrationColumns = `registration_id, event_id, player_id, session_id, payment_intent_id, amount, status, created_at, updated_at`

func (r *PgxRegistrationRepository) SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, reg domain.EventRegistration) error {
	query := `INSERT INTO event_registrations (` + registrationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := tx.Exec(ctx, query, reg.RegistrationID, reg.EventID, reg.PlayerID, mapping.NullString(reg.SessionID),
		mapping.NullString(reg.PaymentIntentID), reg.Amount, string(reg.Status), reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: registration %s already exists", apperrors.ErrDuplicate, reg.RegistrationID)
		}
		return fmt.Errorf("failed to save registration %s: %w", reg.RegistrationID, err)
	}
	return nil
}

func (r *PgxRegistrationRepository) FindRegistrationBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.EventRegistration, error) {
	return r.findForUpdate(ctx, tx, "session_id", sessionID)
}

func (r *PgxRegistrationRepository) FindRegistrationByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.EventRegistration, error) {
	return r.findForUpdate(ctx, tx, "payment_intent_id", paymentIntentID)
}

func (r *PgxRegistrationRepository) findForUpdate(ctx context.Context, tx pgx.Tx, column string, value string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE ` + column + ` = $1 LIMIT 1 FOR UPDATE;`
	var (
		reg                 domain.EventRegistration
		sessionID, intentID sql.NullString
		status              string
	)
	err := tx.QueryRow(ctx, query, value).Scan(&reg.RegistrationID, &reg.EventID, &reg.PlayerID, &sessionID, &intentID,
		&reg.Amount, &status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock registration by %s %s: %w", column, value, err)
	}
	reg.SessionID = mapping.StringPtr(sessionID)
	reg.PaymentIntentID = mapping.StringPtr(intentID)
	reg.Status = domain.PaymentStatus(status)
	return &reg, nil
}

func (r *PgxRegistrationRepository) UpdateRegistrationStatusInTx(ctx context.Context, tx pgx.Tx, registrationID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error {
	query := `
		UPDATE event_registrations
		SET status = $1, payment_intent_id = COALESCE($2, payment_intent_id), updated_at = $3
		WHERE registration_id = $4;
	`
	cmdTag, err := tx.Exec(ctx, query, string(status), paymentIntentID, now, registrationID)
	if err != nil {
		return fmt.Errorf("failed to update status of registration %s: %w", registrationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
