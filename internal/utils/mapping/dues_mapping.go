package mapping

import (
	"database/sql"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/models"
)

func ToModelDuesAccount(d domain.DuesAccount) models.DuesAccount {
	return models.DuesAccount{
		AccountID:       d.AccountID,
		PlayerID:        d.PlayerID,
		Balance:         d.Balance,
		IsGoodStanding:  d.IsGoodStanding,
		LastPaymentDate: NullTime(d.LastPaymentDate),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainDuesAccount(m models.DuesAccount) domain.DuesAccount {
	return domain.DuesAccount{
		AccountID:       m.AccountID,
		PlayerID:        m.PlayerID,
		Balance:         m.Balance,
		IsGoodStanding:  m.IsGoodStanding,
		LastPaymentDate: TimePtr(m.LastPaymentDate),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

func ToModelDuesTransaction(d domain.DuesTransaction) models.DuesTransaction {
	return models.DuesTransaction{
		TransactionID:         d.TransactionID,
		AccountID:             d.AccountID,
		Sequence:              d.Sequence,
		TransactionType:       string(d.TransactionType),
		Amount:                d.Amount,
		Description:           d.Description,
		BalanceAfter:          d.BalanceAfter,
		RelatedPaymentID:      NullString(d.RelatedPaymentID),
		RelatedRegistrationID: NullString(d.RelatedRegistrationID),
		CreatedBy:             NullString(d.CreatedBy),
		CreatedAt:             sql.NullTime{Time: d.CreatedAt, Valid: !d.CreatedAt.IsZero()},
	}
}

func ToDomainDuesTransaction(m models.DuesTransaction) domain.DuesTransaction {
	return domain.DuesTransaction{
		TransactionID:         m.TransactionID,
		AccountID:             m.AccountID,
		Sequence:              m.Sequence,
		TransactionType:       domain.DuesTransactionType(m.TransactionType),
		Amount:                m.Amount,
		Description:           m.Description,
		BalanceAfter:          m.BalanceAfter,
		RelatedPaymentID:      StringPtr(m.RelatedPaymentID),
		RelatedRegistrationID: StringPtr(m.RelatedRegistrationID),
		CreatedBy:             StringPtr(m.CreatedBy),
		CreatedAt:             m.CreatedAt.Time,
	}
}

func ToDomainDuesTransactions(ms []models.DuesTransaction) []domain.DuesTransaction {
	out := make([]domain.DuesTransaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainDuesTransaction(m)
	}
	return out
}
