package dto

import (
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerEntryRequest is the body for posting a charge or a payment.
type LedgerEntryRequest struct {
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description" binding:"required"`
	RelatedPaymentID      *string         `json:"relatedPaymentID"`
	RelatedRegistrationID *string         `json:"relatedRegistrationID"`
}

// ToDomain builds the service request for playerID acting as userID.
func (r LedgerEntryRequest) ToDomain(playerID string, userID string) domain.LedgerEntryRequest {
	return domain.LedgerEntryRequest{
		PlayerID:              playerID,
		Amount:                r.Amount,
		Description:           r.Description,
		RelatedPaymentID:      r.RelatedPaymentID,
		RelatedRegistrationID: r.RelatedRegistrationID,
		Actor:                 userID,
	}
}

// DuesTransactionResponse defines the data returned for a ledger entry.
type DuesTransactionResponse struct {
	TransactionID         string                     `json:"transactionID"`
	AccountID             string                     `json:"accountID"`
	Sequence              int64                      `json:"sequence"`
	TransactionType       domain.DuesTransactionType `json:"transactionType"`
	Amount                decimal.Decimal            `json:"amount"`
	Description           string                     `json:"description"`
	BalanceAfter          decimal.Decimal            `json:"balanceAfter"`
	RelatedPaymentID      *string                    `json:"relatedPaymentID,omitempty"`
	RelatedRegistrationID *string                    `json:"relatedRegistrationID,omitempty"`
	CreatedBy             *string                    `json:"createdBy,omitempty"`
	CreatedAt             time.Time                  `json:"createdAt"`
}

func ToDuesTransactionResponse(t *domain.DuesTransaction) DuesTransactionResponse {
	return DuesTransactionResponse{
		TransactionID:         t.TransactionID,
		AccountID:             t.AccountID,
		Sequence:              t.Sequence,
		TransactionType:       t.TransactionType,
		Amount:                t.Amount,
		Description:           t.Description,
		BalanceAfter:          t.BalanceAfter,
		RelatedPaymentID:      t.RelatedPaymentID,
		RelatedRegistrationID: t.RelatedRegistrationID,
		CreatedBy:             t.CreatedBy,
		CreatedAt:             t.CreatedAt,
	}
}

// ListDuesTransactionsParams defines query parameters for paging a ledger.
type ListDuesTransactionsParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListDuesTransactionsResponse is one page of ledger entries.
type ListDuesTransactionsResponse struct {
	Transactions []DuesTransactionResponse `json:"transactions"`
	NextToken    *string                   `json:"nextToken,omitempty"`
}

// ExportDuesResponse reports a roster export.
type ExportDuesResponse struct {
	Rows       int       `json:"rows"`
	ExportedAt time.Time `json:"exportedAt"`
}
