package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// OrderRepository persists merch orders. Lookups used by the webhook handler
// lock the row FOR UPDATE inside the caller's transaction.
type OrderRepository interface {
	TransactionManager
	SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error
	FindOrderBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.Order, error)
	FindOrderByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.Order, error)
	UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error
	UpdateOrderFulfillment(ctx context.Context, orderID string, status domain.FulfillmentStatus, fulfillmentOrderID *string, now time.Time) error
}

// RegistrationRepository persists event registrations
type RegistrationRepository interface {
	SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.EventRegistration) error
	FindRegistrationBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.EventRegistration, error)
	FindRegistrationByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.EventRegistration, error)
	UpdateRegistrationStatusInTx(ctx context.Context, tx pgx.Tx, registrationID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error
}

// WebhookReceiptRepository records processed webhook deliveries for replay safety
type WebhookReceiptRepository interface {
	// RecordReceiptInTx inserts the receipt and reports false when it already existed.
	RecordReceiptInTx(ctx context.Context, tx pgx.Tx, provider string, dedupKey string, eventType string, at time.Time) (bool, error)
}
