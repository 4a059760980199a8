package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/SscSPs/club_management_app/internal/utils/pagination"
)

const maxLedgerPageSize = 200

// duesService owns every mutation of a dues account. Each mutation locks the
// account row, appends the ledger entry and rewrites the cached balance in one
// database transaction.
type duesService struct {
	BaseService
	duesRepo portsrepo.DuesRepositoryWithTx
}

func NewDuesService(duesRepo portsrepo.DuesRepositoryWithTx) portssvc.DuesSvcFacade {
	return &duesService{BaseService: newBaseService(), duesRepo: duesRepo}
}

var _ portssvc.DuesSvcFacade = (*duesService)(nil)

func (s *duesService) GetAccount(ctx context.Context, playerID string) (*domain.DuesAccount, error) {
	acct, err := s.duesRepo.FindDuesAccountByPlayerID(ctx, playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: dues account for player %s", apperrors.ErrNotFound, playerID)
		}
		s.LogError(ctx, err, "Failed to get dues account", slog.String("player_id", playerID))
		return nil, fmt.Errorf("failed to get dues account: %w", err)
	}
	return acct, nil
}

func (s *duesService) AddCharge(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	return s.post(ctx, domain.DuesCharge, req)
}

func (s *duesService) AddPayment(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	return s.post(ctx, domain.DuesPayment, req)
}

func (s *duesService) AddChargeInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	return s.postInTx(ctx, tx, domain.DuesCharge, req)
}

func (s *duesService) AddPaymentInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	return s.postInTx(ctx, tx, domain.DuesPayment, req)
}

func (s *duesService) post(ctx context.Context, txnType domain.DuesTransactionType, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	// Validate before opening a transaction.
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := s.duesRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := s.duesRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back dues transaction")
		}
	}()

	txn, err := s.postInTx(ctx, tx, txnType, req)
	if err != nil {
		return nil, err
	}
	if err := s.duesRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Dues ledger entry posted",
		slog.String("player_id", req.PlayerID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txnType)),
		slog.String("amount", txn.Amount.String()),
		slog.String("balance_after", txn.BalanceAfter.String()))
	return txn, nil
}

func (s *duesService) postInTx(ctx context.Context, tx pgx.Tx, txnType domain.DuesTransactionType, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	acct, err := s.duesRepo.LockDuesAccountByPlayerIDInTx(ctx, tx, req.PlayerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: dues account for player %s", apperrors.ErrNotFound, req.PlayerID)
		}
		return nil, fmt.Errorf("failed to lock dues account: %w", err)
	}

	next, txn, err := acct.Apply(txnType, req, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	txn.TransactionID = uuid.NewString()

	if err := s.duesRepo.UpdateDuesAccountInTx(ctx, tx, next); err != nil {
		return nil, fmt.Errorf("failed to update dues account: %w", err)
	}
	saved, err := s.duesRepo.AppendDuesTransactionInTx(ctx, tx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to append dues transaction: %w", err)
	}
	return &saved, nil
}

// ListTransactions pages through the ledger in sequence order. The token
// encodes the last entry returned.
func (s *duesService) ListTransactions(ctx context.Context, playerID string, params dto.ListDuesTransactionsParams) (*dto.ListDuesTransactionsResponse, error) {
	acct, err := s.GetAccount(ctx, playerID)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxLedgerPageSize {
		limit = maxLedgerPageSize
	}

	var after *domain.LedgerCursor
	if params.NextToken != nil && *params.NextToken != "" {
		after, err = pagination.DecodeLedgerCursor(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	// Fetch one extra row to know whether another page exists.
	txns, err := s.duesRepo.ListDuesTransactions(ctx, acct.AccountID, limit+1, after)
	if err != nil {
		s.LogError(ctx, err, "Failed to list dues transactions", slog.String("player_id", playerID))
		return nil, fmt.Errorf("failed to list dues transactions: %w", err)
	}

	resp := &dto.ListDuesTransactionsResponse{Transactions: []dto.DuesTransactionResponse{}}
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeLedgerCursor(domain.LedgerCursor{CreatedAt: last.CreatedAt, Sequence: last.Sequence})
		resp.NextToken = &token
	}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, dto.ToDuesTransactionResponse(&txns[i]))
	}
	return resp, nil
}

func (s *duesService) VerifyLedger(ctx context.Context, playerID string) (*domain.LedgerVerification, error) {
	acct, err := s.GetAccount(ctx, playerID)
	if err != nil {
		return nil, err
	}
	txns, err := s.duesRepo.ListAllDuesTransactions(ctx, acct.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	v := acct.VerifyAgainst(txns)
	if !v.Consistent {
		s.LogWarn(ctx, "Dues ledger verification failed",
			slog.String("player_id", playerID),
			slog.String("account_id", acct.AccountID),
			slog.String("mismatch", v.Mismatch))
	}
	return &v, nil
}
