package services

import (
	"context"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// CheckoutSvcFacade opens checkouts and applies payment webhooks.
type CheckoutSvcFacade interface {
	StartCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	StartRegistrationCheckout(ctx context.Context, eventID string, playerID string, customerEmail string, userID string) (*domain.EventRegistration, *domain.CheckoutSession, error)
	QuoteShipping(ctx context.Context, items []domain.CheckoutItem, address domain.ShippingAddress) (*domain.ShippingQuote, error)

	// HandleWebhook verifies the signature before anything else, then applies
	// the event. Replays of an already processed event are no-ops.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}
