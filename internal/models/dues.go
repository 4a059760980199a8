package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// DuesAccount is the dues_accounts row.
type DuesAccount struct {
	AccountID       string          `json:"accountID"`
	PlayerID        string          `json:"playerID"`
	Balance         decimal.Decimal `json:"balance"`
	IsGoodStanding  bool            `json:"isGoodStanding"`
	LastPaymentDate sql.NullTime    `json:"lastPaymentDate"`
	AuditFields
}

// DuesTransaction is the dues_transactions row. Rows are insert-only.
type DuesTransaction struct {
	TransactionID         string          `json:"transactionID"`
	AccountID             string          `json:"accountID"`
	Sequence              int64           `json:"sequence"`
	TransactionType       string          `json:"transactionType"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	BalanceAfter          decimal.Decimal `json:"balanceAfter"`
	RelatedPaymentID      sql.NullString  `json:"relatedPaymentID"`
	RelatedRegistrationID sql.NullString  `json:"relatedRegistrationID"`
	CreatedBy             sql.NullString  `json:"createdBy"`
	CreatedAt             sql.NullTime    `json:"createdAt"`
}
