package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDuesTransactionMapping_OptionalReferences(t *testing.T) {
	paymentID := "pi_123"
	txn := domain.DuesTransaction{
		TransactionID:    "txn-1",
		AccountID:        "acct-1",
		Sequence:         3,
		TransactionType:  domain.DuesPayment,
		Amount:           decimal.NewFromInt(50),
		Description:      "Checkout payment",
		BalanceAfter:     decimal.NewFromInt(100),
		RelatedPaymentID: &paymentID,
		CreatedAt:        time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	m := ToModelDuesTransaction(txn)
	assert.True(t, m.RelatedPaymentID.Valid)
	assert.False(t, m.RelatedRegistrationID.Valid)
	assert.False(t, m.CreatedBy.Valid)
	assert.Equal(t, "PAYMENT", m.TransactionType)

	back := ToDomainDuesTransaction(m)
	assert.Equal(t, txn, back)
}

func TestDuesAccountMapping_NullPaymentDate(t *testing.T) {
	acct := domain.DuesAccount{AccountID: "acct-1", PlayerID: "p-1", Balance: decimal.Zero, IsGoodStanding: true}

	m := ToModelDuesAccount(acct)
	assert.False(t, m.LastPaymentDate.Valid)
	assert.Nil(t, ToDomainDuesAccount(m).LastPaymentDate)
}
