package services

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/jackc/pgx/v5"
)

// DuesReaderSvc defines read operations over dues accounts
type DuesReaderSvc interface {
	GetAccount(ctx context.Context, playerID string) (*domain.DuesAccount, error)
	ListTransactions(ctx context.Context, playerID string, params dto.ListDuesTransactionsParams) (*dto.ListDuesTransactionsResponse, error)
	VerifyLedger(ctx context.Context, playerID string) (*domain.LedgerVerification, error)
}

// DuesLedgerSvc is the only way to mutate a dues account
type DuesLedgerSvc interface {
	AddCharge(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error)
	AddPayment(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error)
}

// DuesLedgerTxSvc runs ledger mutations inside a transaction owned by the caller.
type DuesLedgerTxSvc interface {
	AddChargeInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error)
	AddPaymentInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error)
}

type DuesSvcFacade interface {
	DuesReaderSvc
	DuesLedgerSvc
	DuesLedgerTxSvc
}

// DuesExportSvc publishes the dues roster
type DuesExportSvc interface {
	ExportDuesRoster(ctx context.Context) (*dto.ExportDuesResponse, error)
}
