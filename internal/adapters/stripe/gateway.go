package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// Gateway opens hosted Stripe Checkout sessions.
type Gateway struct {
	client   *client.API
	currency string
}

var _ portssvc.PaymentGateway = (*Gateway)(nil)

// NewGateway builds a gateway with its own client so no package-level
// Stripe state is shared. backends may be nil to use the defaults.
func NewGateway(secretKey string, currency string, backends *stripe.Backends) *Gateway {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &Gateway{client: sc, currency: currency}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	if len(req.Lines) == 0 {
		return nil, apperrors.NewBadRequestError("checkout has no lines")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, line := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(line.UnitAmountCent),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}
	if len(req.Metadata) > 0 {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{}
		for k, v := range req.Metadata {
			params.AddMetadata(k, v)
			params.PaymentIntentData.AddMetadata(k, v)
		}
		if key := idempotencyKey(req.Metadata); key != "" {
			params.SetIdempotencyKey(key)
		}
	}
	params.Context = ctx

	s, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError("checkout.session.create", err)
	}
	return &domain.CheckoutSession{SessionID: s.ID, URL: s.URL}, nil
}

// idempotencyKey ties a session to the local record it pays for, so a retried
// request cannot open a second session for the same order.
func idempotencyKey(md map[string]string) string {
	if id := md["order_id"]; id != "" {
		return "checkout-order-" + id
	}
	if id := md["registration_id"]; id != "" {
		return "checkout-registration-" + id
	}
	return ""
}

// mapStripeError keeps stripe-go types out of the services.
func mapStripeError(operation string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusBadRequest && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return fmt.Errorf("%w: stripe %s: %s", apperrors.ErrValidation, operation, stripeErr.Msg)
		}
		return apperrors.NewRemoteError("stripe "+operation, fmt.Errorf("%s (status %d, request %s)", stripeErr.Msg, stripeErr.HTTPStatusCode, stripeErr.RequestID))
	}
	return apperrors.NewRemoteError("stripe "+operation, err)
}
