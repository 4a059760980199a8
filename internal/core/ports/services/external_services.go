package services

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// PaymentGateway opens hosted checkout sessions with the payment processor.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error)
}

// WebhookVerifier authenticates a raw webhook body and normalizes it. A nil
// event with a nil error means the event type is not one we act on.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, signatureHeader string) (*domain.PaymentEvent, error)
}

// CatalogProvider reads products from the print-on-demand provider.
type CatalogProvider interface {
	GetProductCatalog(ctx context.Context, externalProductID string) (*domain.RemoteProduct, error)
}

// FulfillmentProvider submits paid print-on-demand orders and quotes shipping.
type FulfillmentProvider interface {
	SubmitOrder(ctx context.Context, req domain.FulfillmentRequest) (string, error)
	QuoteShipping(ctx context.Context, req domain.FulfillmentRequest) (*domain.ShippingQuote, error)
}

// CalendarFeed fetches and parses a calendar feed. The returned sequence is
// consumed once; an error yielded mid-sequence is a fetch-level failure.
type CalendarFeed interface {
	FetchEvents(ctx context.Context, feedURL string) (iter.Seq2[domain.RemoteEvent, error], error)
}

// TokenRefresher exchanges a long-lived social token for a fresh one.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, accessToken string) (*domain.RefreshedToken, error)
}

// RefreshLock is a cross-process mutual exclusion keyed by name.
type RefreshLock interface {
	// Acquire returns acquired=false without error when another holder owns the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// RosterWriter publishes the dues roster to a spreadsheet.
type RosterWriter interface {
	WriteRoster(ctx context.Context, header []string, rows [][]any) error
}

// ExternalClients bundles the third-party adapters services depend on. Nil
// members disable the features that need them.
type ExternalClients struct {
	Payments    PaymentGateway
	Webhooks    WebhookVerifier
	Catalog     CatalogProvider
	Fulfillment FulfillmentProvider
	Calendar    CalendarFeed
	Social      TokenRefresher
	Lock        RefreshLock
	Roster      RosterWriter
}
