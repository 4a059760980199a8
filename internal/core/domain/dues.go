package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DuesTransactionType classifies a ledger entry.
type DuesTransactionType string

const (
	DuesCharge  DuesTransactionType = "CHARGE"
	DuesPayment DuesTransactionType = "PAYMENT"
	DuesCredit  DuesTransactionType = "CREDIT"
	DuesRefund  DuesTransactionType = "REFUND"
)

var (
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrSubCentAmount      = errors.New("amount must not have more than two decimal places")
	ErrDescriptionMissing = errors.New("description is required")
	ErrLedgerMismatch     = errors.New("ledger replay does not match stored balance")
)

// Sign returns +1 for entries that increase what the player owes and -1 for
// entries that reduce it.
func (t DuesTransactionType) Sign() int {
	if t == DuesCharge {
		return 1
	}
	return -1
}

func (t DuesTransactionType) IsValid() bool {
	switch t {
	case DuesCharge, DuesPayment, DuesCredit, DuesRefund:
		return true
	}
	return false
}

// DuesAccount is a player's running balance. A positive balance means the
// player owes the club; a negative one is a credit.
type DuesAccount struct {
	AccountID       string          `json:"accountID"`
	PlayerID        string          `json:"playerID"`
	Balance         decimal.Decimal `json:"balance"`
	IsGoodStanding  bool            `json:"isGoodStanding"`
	LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"`
	AuditFields
}

// DuesTransaction is an immutable ledger entry. Amount is always a positive
// magnitude; the direction comes from TransactionType.
type DuesTransaction struct {
	TransactionID         string              `json:"transactionID"`
	AccountID             string              `json:"accountID"`
	Sequence              int64               `json:"sequence"`
	TransactionType       DuesTransactionType `json:"transactionType"`
	Amount                decimal.Decimal     `json:"amount"`
	Description           string              `json:"description"`
	BalanceAfter          decimal.Decimal     `json:"balanceAfter"`
	RelatedPaymentID      *string             `json:"relatedPaymentID,omitempty"`
	RelatedRegistrationID *string             `json:"relatedRegistrationID,omitempty"`
	CreatedBy             *string             `json:"createdBy,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
}

func (t DuesTransaction) SignedAmount() decimal.Decimal {
	if t.TransactionType.Sign() > 0 {
		return t.Amount
	}
	return t.Amount.Neg()
}

// LedgerEntryRequest carries the inputs shared by charges and payments.
type LedgerEntryRequest struct {
	PlayerID              string
	Amount                decimal.Decimal
	Description           string
	RelatedPaymentID      *string
	RelatedRegistrationID *string
	Actor                 string
}

func (r LedgerEntryRequest) Validate() error {
	if strings.TrimSpace(r.PlayerID) == "" {
		return errors.New("player id is required")
	}
	if !r.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !r.Amount.Equal(r.Amount.Truncate(2)) {
		return ErrSubCentAmount
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrDescriptionMissing
	}
	return nil
}

// IsGoodStandingFor derives standing from a balance: nothing owed means good standing.
func IsGoodStandingFor(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(decimal.Zero)
}

// Apply returns the account state after posting an entry of the given type and
// the entry itself. The receiver is left untouched; the caller persists both
// values in one database transaction.
func (a DuesAccount) Apply(txnType DuesTransactionType, req LedgerEntryRequest, at time.Time) (DuesAccount, DuesTransaction, error) {
	if !txnType.IsValid() {
		return a, DuesTransaction{}, fmt.Errorf("unknown transaction type %q", txnType)
	}
	if err := req.Validate(); err != nil {
		return a, DuesTransaction{}, err
	}

	txn := DuesTransaction{
		AccountID:             a.AccountID,
		TransactionType:       txnType,
		Amount:                req.Amount,
		Description:           strings.TrimSpace(req.Description),
		RelatedPaymentID:      req.RelatedPaymentID,
		RelatedRegistrationID: req.RelatedRegistrationID,
		CreatedAt:             at,
	}
	if req.Actor != "" {
		actor := req.Actor
		txn.CreatedBy = &actor
	}

	next := a
	next.Balance = a.Balance.Add(txn.SignedAmount())
	next.IsGoodStanding = IsGoodStandingFor(next.Balance)
	if txnType == DuesPayment {
		paidAt := at
		next.LastPaymentDate = &paidAt
	}
	next.LastUpdatedAt = at
	if req.Actor != "" {
		next.LastUpdatedBy = req.Actor
	}
	txn.BalanceAfter = next.Balance

	return next, txn, nil
}

// LedgerVerification reports the outcome of replaying an account's entries.
type LedgerVerification struct {
	AccountID       string          `json:"accountID"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ReplayedBalance decimal.Decimal `json:"replayedBalance"`
	EntryCount      int             `json:"entryCount"`
	Consistent      bool            `json:"consistent"`
	Mismatch        string          `json:"mismatch,omitempty"`
}

// ReplayLedger sums entries in ledger order starting from zero and checks each
// recorded balance_after along the way. Entries must already be sorted by
// sequence.
func ReplayLedger(txns []DuesTransaction) (decimal.Decimal, error) {
	running := decimal.Zero
	for _, txn := range txns {
		running = running.Add(txn.SignedAmount())
		if !running.Equal(txn.BalanceAfter) {
			return running, fmt.Errorf("%w: entry %s (sequence %d) recorded %s, replay gives %s",
				ErrLedgerMismatch, txn.TransactionID, txn.Sequence, txn.BalanceAfter.String(), running.String())
		}
	}
	return running, nil
}

// VerifyAgainst replays txns and compares the result with the account's stored balance.
func (a DuesAccount) VerifyAgainst(txns []DuesTransaction) LedgerVerification {
	result := LedgerVerification{
		AccountID:     a.AccountID,
		StoredBalance: a.Balance,
		EntryCount:    len(txns),
	}
	replayed, err := ReplayLedger(txns)
	result.ReplayedBalance = replayed
	if err != nil {
		result.Mismatch = err.Error()
		return result
	}
	if !replayed.Equal(a.Balance) {
		result.Mismatch = fmt.Sprintf("%s: stored %s, replay gives %s", ErrLedgerMismatch, a.Balance.String(), replayed.String())
		return result
	}
	if a.IsGoodStanding != IsGoodStandingFor(a.Balance) {
		result.Mismatch = "good standing flag does not match balance"
		return result
	}
	result.Consistent = true
	return result
}

// LedgerCursor identifies a position in an account's ledger for paging.
// Sequence is assigned under the account lock and alone defines ledger order.
type LedgerCursor struct {
	CreatedAt time.Time
	Sequence  int64
}

// DuesRosterEntry is one row of the dues export.
type DuesRosterEntry struct {
	PlayerID        string
	PlayerName      string
	GuardianEmail   string
	Balance         decimal.Decimal
	IsGoodStanding  bool
	LastPaymentDate *time.Time
}
