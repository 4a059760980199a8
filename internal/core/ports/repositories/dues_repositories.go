package repositories

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DuesAccountReader defines read operations for dues accounts
type DuesAccountReader interface {
	// FindDuesAccountByPlayerID retrieves the account owned by a player.
	FindDuesAccountByPlayerID(ctx context.Context, playerID string) (*domain.DuesAccount, error)

	// ListDuesRoster returns every account joined with its player, ordered by player name.
	ListDuesRoster(ctx context.Context) ([]domain.DuesRosterEntry, error)
}

// DuesTransactionReader defines read operations over the append-only ledger
type DuesTransactionReader interface {
	// ListDuesTransactions returns up to limit entries in ledger order, starting after the cursor.
	ListDuesTransactions(ctx context.Context, accountID string, limit int, after *domain.LedgerCursor) ([]domain.DuesTransaction, error)

	// ListAllDuesTransactions returns the whole ledger for an account in sequence order.
	ListAllDuesTransactions(ctx context.Context, accountID string) ([]domain.DuesTransaction, error)
}

// DuesLedgerWriter mutates accounts and appends ledger entries. Every method
// runs inside the caller's transaction; there is deliberately no update or
// delete for ledger entries.
type DuesLedgerWriter interface {
	CreateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error

	// LockDuesAccountByPlayerIDInTx selects the account FOR UPDATE.
	LockDuesAccountByPlayerIDInTx(ctx context.Context, tx pgx.Tx, playerID string) (*domain.DuesAccount, error)

	UpdateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error

	// AppendDuesTransactionInTx inserts the entry and returns it with its assigned sequence.
	AppendDuesTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.DuesTransaction) (domain.DuesTransaction, error)
}

type DuesRepositoryFacade interface {
	DuesAccountReader
	DuesTransactionReader
	DuesLedgerWriter
}

type DuesRepositoryWithTx interface {
	DuesRepositoryFacade
	TransactionManager
}
