package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/club_management_app/internal/models"
	"github.com/SscSPs/club_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxDuesRepository struct {
	BaseRepository
}

func newPgxDuesRepository(pool DBPool) portsrepo.DuesRepositoryWithTx {
	return &PgxDuesRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DuesRepositoryWithTx = (*PgxDuesRepository)(nil)

const duesAccountColumns = `account_id, player_id, balance, is_good_standing, last_payment_date, created_at, created_by, last_updated_at, last_updated_by`

const duesTransactionColumns = `transaction_id, account_id, sequence, transaction_type, amount, description, balance_after, related_payment_id, related_registration_id, created_by, created_at`

func scanDuesAccount(row pgx.Row) (domain.DuesAccount, error) {
	var m models.DuesAccount
	err := row.Scan(&m.AccountID, &m.PlayerID, &m.Balance, &m.IsGoodStanding, &m.LastPaymentDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	if err != nil {
		return domain.DuesAccount{}, err
	}
	return mapping.ToDomainDuesAccount(m), nil
}

func scanDuesTransactions(rows pgx.Rows) ([]domain.DuesTransaction, error) {
	defer rows.Close()
	var ms []models.DuesTransaction
	for rows.Next() {
		var m models.DuesTransaction
		if err := rows.Scan(&m.TransactionID, &m.AccountID, &m.Sequence, &m.TransactionType, &m.Amount,
			&m.Description, &m.BalanceAfter, &m.RelatedPaymentID, &m.RelatedRegistrationID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dues transaction row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dues transaction rows: %w", err)
	}
	return mapping.ToDomainDuesTransactions(ms), nil
}

// CreateDuesAccountInTx inserts a new, empty account.
func (r *PgxDuesRepository) CreateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error {
	m := mapping.ToModelDuesAccount(account)
	query := `INSERT INTO dues_accounts (` + duesAccountColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := tx.Exec(ctx, query, m.AccountID, m.PlayerID, m.Balance, m.IsGoodStanding, m.LastPaymentDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player %s already has a dues account", apperrors.ErrDuplicate, m.PlayerID)
		}
		return fmt.Errorf("failed to create dues account for player %s: %w", m.PlayerID, err)
	}
	return nil
}

// FindDuesAccountByPlayerID retrieves the account owned by a player.
func (r *PgxDuesRepository) FindDuesAccountByPlayerID(ctx context.Context, playerID string) (*domain.DuesAccount, error) {
	query := `SELECT ` + duesAccountColumns + ` FROM dues_accounts WHERE player_id = $1;`
	acct, err := scanDuesAccount(r.Pool.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dues account for player %s: %w", playerID, err)
	}
	return &acct, nil
}

// LockDuesAccountByPlayerIDInTx selects the account and locks its row until the transaction ends.
func (r *PgxDuesRepository) LockDuesAccountByPlayerIDInTx(ctx context.Context, tx pgx.Tx, playerID string) (*domain.DuesAccount, error) {
	query := `SELECT ` + duesAccountColumns + ` FROM dues_accounts WHERE player_id = $1 FOR UPDATE;`
	acct, err := scanDuesAccount(tx.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock dues account for player %s: %w", playerID, err)
	}
	return &acct, nil
}

// UpdateDuesAccountInTx writes the derived balance fields of a locked account.
func (r *PgxDuesRepository) UpdateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error {
	m := mapping.ToModelDuesAccount(account)
	query := `
		UPDATE dues_accounts
		SET balance = $1, is_good_standing = $2, last_payment_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $6;
	`
	cmdTag, err := tx.Exec(ctx, query, m.Balance, m.IsGoodStanding, m.LastPaymentDate, m.LastUpdatedAt, m.LastUpdatedBy, m.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update dues account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendDuesTransactionInTx inserts a ledger entry, assigning the next per-account sequence.
// The account row must already be locked by the caller.
func (r *PgxDuesRepository) AppendDuesTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.DuesTransaction) (domain.DuesTransaction, error) {
	m := mapping.ToModelDuesTransaction(txn)
	query := `
		INSERT INTO dues_transactions (` + duesTransactionColumns + `)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(sequence), 0) + 1 FROM dues_transactions WHERE account_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING sequence;
	`
	var seq int64
	err := tx.QueryRow(ctx, query, m.TransactionID, m.AccountID, m.TransactionType, m.Amount, m.Description,
		m.BalanceAfter, m.RelatedPaymentID, m.RelatedRegistrationID, m.CreatedBy, m.CreatedAt).Scan(&seq)
	if err != nil {
		return domain.DuesTransaction{}, fmt.Errorf("failed to append dues transaction %s: %w", m.TransactionID, err)
	}
	txn.Sequence = seq
	return txn, nil
}

// ListDuesTransactions retrieves a page of ledger entries in sequence order.
func (r *PgxDuesRepository) ListDuesTransactions(ctx context.Context, accountID string, limit int, after *domain.LedgerCursor) ([]domain.DuesTransaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		query := `SELECT ` + duesTransactionColumns + ` FROM dues_transactions
			WHERE account_id = $1 ORDER BY sequence LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountID, limit)
	} else {
		query := `SELECT ` + duesTransactionColumns + ` FROM dues_transactions
			WHERE account_id = $1 AND sequence > $2
			ORDER BY sequence LIMIT $3;`
		rows, err = r.Pool.Query(ctx, query, accountID, after.Sequence, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list dues transactions for account %s: %w", accountID, err)
	}
	return scanDuesTransactions(rows)
}

// ListAllDuesTransactions retrieves the whole ledger for replay.
func (r *PgxDuesRepository) ListAllDuesTransactions(ctx context.Context, accountID string) ([]domain.DuesTransaction, error) {
	query := `SELECT ` + duesTransactionColumns + ` FROM dues_transactions WHERE account_id = $1 ORDER BY sequence;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dues transactions for account %s: %w", accountID, err)
	}
	return scanDuesTransactions(rows)
}

// ListDuesRoster returns every account joined with its player.
func (r *PgxDuesRepository) ListDuesRoster(ctx context.Context) ([]domain.DuesRosterEntry, error) {
	query := `
		SELECT p.player_id, p.first_name, p.last_name, p.guardian_email, a.balance, a.is_good_standing, a.last_payment_date
		FROM dues_accounts a
		JOIN players p ON p.player_id = a.player_id
		ORDER BY p.last_name, p.first_name, p.player_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dues roster: %w", err)
	}
	defer rows.Close()

	roster := []domain.DuesRosterEntry{}
	for rows.Next() {
		var (
			e                   domain.DuesRosterEntry
			firstName, lastName string
			lastPayment         sql.NullTime
		)
		if err := rows.Scan(&e.PlayerID, &firstName, &lastName, &e.GuardianEmail, &e.Balance, &e.IsGoodStanding, &lastPayment); err != nil {
			return nil, fmt.Errorf("failed to scan dues roster row: %w", err)
		}
		e.PlayerName = domain.Player{FirstName: firstName, LastName: lastName}.FullName()
		e.LastPaymentDate = mapping.TimePtr(lastPayment)
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dues roster rows: %w", err)
	}
	return roster, nil
}
