package pgsql

import (
	"context"
	"database/sql"
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

var duesAccountCols = []string{"account_id", "player_id", "balance", "is_good_standing", "last_payment_date",
	"created_at", "created_by", "last_updated_at", "last_updated_by"}

var duesTransactionCols = []string{"transaction_id", "account_id", "sequence", "transaction_type", "amount",
	"description", "balance_after", "related_payment_id", "related_registration_id", "created_by", "created_at"}

func newDuesRepoWithMock(t *testing.T) (*PgxDuesRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPgxDuesRepository(mock).(*PgxDuesRepository), mock
}

func TestLockDuesAccountByPlayerIDInTx(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM dues_accounts WHERE player_id = \$1 FOR UPDATE`).
		WithArgs("player-1").
		WillReturnRows(pgxmock.NewRows(duesAccountCols).
			AddRow("acct-1", "player-1", "150.00", false, sql.NullTime{}, now, "coach", now, "coach"))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	acct, err := repo.LockDuesAccountByPlayerIDInTx(ctx, tx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", acct.AccountID)
	assert.True(t, decimal.RequireFromString("150").Equal(acct.Balance))
	assert.False(t, acct.IsGoodStanding)
	assert.Nil(t, acct.LastPaymentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockDuesAccountByPlayerIDInTx_NotFound(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM dues_accounts WHERE player_id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	_, err = repo.LockDuesAccountByPlayerIDInTx(ctx, tx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendDuesTransactionInTx_AssignsSequence(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	txn := domain.DuesTransaction{
		TransactionID:   "txn-1",
		AccountID:       "acct-1",
		TransactionType: domain.DuesCharge,
		Amount:          decimal.RequireFromString("150"),
		Description:     "Spring season",
		BalanceAfter:    decimal.RequireFromString("150"),
		CreatedAt:       now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)INSERT INTO dues_transactions .* COALESCE\(MAX\(sequence\), 0\) \+ 1 .*RETURNING sequence`).
		WithArgs("txn-1", "acct-1", "CHARGE", pgxmock.AnyArg(), "Spring season", pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"sequence"}).AddRow(int64(3)))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	saved, err := repo.AppendDuesTransactionInTx(ctx, tx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.Sequence)
	assert.Equal(t, "txn-1", saved.TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDuesAccountInTx_NoRows(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE dues_accounts`).
		WithArgs(pgxmock.AnyArg(), true, pgxmock.AnyArg(), pgxmock.AnyArg(), "treasurer", "acct-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = repo.UpdateDuesAccountInTx(ctx, tx, domain.DuesAccount{
		AccountID:      "acct-x",
		Balance:        decimal.Zero,
		IsGoodStanding: true,
		AuditFields:    domain.AuditFields{LastUpdatedBy: "treasurer"},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDuesTransactions_AfterCursor(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()
	t1 := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	cursor := &domain.LedgerCursor{CreatedAt: t1, Sequence: 1}

	mock.ExpectQuery(`SELECT .* FROM dues_transactions\s+WHERE account_id = \$1 AND sequence > \$2\s+ORDER BY sequence LIMIT \$3`).
		WithArgs("acct-1", int64(1), 2).
		WillReturnRows(pgxmock.NewRows(duesTransactionCols).
			AddRow("txn-2", "acct-1", int64(2), "PAYMENT", "50.00", "Cash", "100.00",
				sql.NullString{String: "pay-1", Valid: true}, sql.NullString{}, sql.NullString{String: "treasurer", Valid: true},
				sql.NullTime{Time: t2, Valid: true}))

	txns, err := repo.ListDuesTransactions(ctx, "acct-1", 2, cursor)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.DuesPayment, txns[0].TransactionType)
	assert.Equal(t, int64(2), txns[0].Sequence)
	assert.Equal(t, t2, txns[0].CreatedAt)
	require.NotNil(t, txns[0].RelatedPaymentID)
	assert.Equal(t, "pay-1", *txns[0].RelatedPaymentID)
	assert.Nil(t, txns[0].RelatedRegistrationID)
	assert.True(t, decimal.RequireFromString("-50").Equal(txns[0].SignedAmount()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDuesRoster(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	ctx := context.Background()
	paid := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM dues_accounts a\s+JOIN players p`).
		WillReturnRows(pgxmock.NewRows([]string{"player_id", "first_name", "last_name", "guardian_email", "balance", "is_good_standing", "last_payment_date"}).
			AddRow("p1", "Ada", "Lovelace", "parent@example.com", "0.00", true, sql.NullTime{Time: paid, Valid: true}).
			AddRow("p2", "Alan", "Turing", "", "25.00", false, sql.NullTime{}))

	roster, err := repo.ListDuesRoster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Ada Lovelace", roster[0].PlayerName)
	require.NotNil(t, roster[0].LastPaymentDate)
	assert.Equal(t, paid, *roster[0].LastPaymentDate)
	assert.False(t, roster[1].IsGoodStanding)
	assert.Nil(t, roster[1].LastPaymentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordReceiptInTx_Replay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPgxWebhookReceiptRepository(mock)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO webhook_receipts .*ON CONFLICT \(provider, dedup_key\) DO NOTHING`).
		WithArgs("stripe", "completed:cs_1", "checkout.session.completed", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO webhook_receipts`).
		WithArgs("stripe", "completed:cs_1", "checkout.session.completed", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	first, err := repo.RecordReceiptInTx(ctx, tx, "stripe", "completed:cs_1", "checkout.session.completed", now)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.RecordReceiptInTx(ctx, tx, "stripe", "completed:cs_1", "checkout.session.completed", now)
	require.NoError(t, err)
	assert.False(t, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllDuesTransactions_OrdersBySequenceOnly(t *testing.T) {
	repo, mock := newDuesRepoWithMock(t)
	later := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Minute)

	// Entry 2 was stamped by a server whose clock runs behind; sequence still wins.
	mock.ExpectQuery(`FROM dues_transactions WHERE account_id = \$1 ORDER BY sequence;`).
		WithArgs("acct-1").
		WillReturnRows(pgxmock.NewRows(duesTransactionCols).
			AddRow("txn-1", "acct-1", int64(1), "CHARGE", "100.00", "Season", "100.00",
				sql.NullString{}, sql.NullString{}, sql.NullString{String: "treasurer", Valid: true},
				sql.NullTime{Time: later, Valid: true}).
			AddRow("txn-2", "acct-1", int64(2), "PAYMENT", "40.00", "Cash", "60.00",
				sql.NullString{}, sql.NullString{}, sql.NullString{String: "treasurer", Valid: true},
				sql.NullTime{Time: earlier, Valid: true}))

	txns, err := repo.ListAllDuesTransactions(context.Background(), "acct-1")
	require.NoError(t, err)
	balance, err := domain.ReplayLedger(txns)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("60").Equal(balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}
