package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

const providerName = "stripe"

// Processor verifies Stripe webhook signatures and normalizes the events the
// club acts on.
type Processor struct {
	secret string
}

var _ portssvc.WebhookVerifier = (*Processor)(nil)

func NewProcessor(secret string) *Processor {
	return &Processor{secret: secret}
}

func (p *Processor) VerifyAndParse(payload []byte, signatureHeader string) (*domain.PaymentEvent, error) {
	if p.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", apperrors.ErrSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSignature, err)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: stripe event %s has no data", apperrors.ErrValidation, event.ID)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: decoding checkout session: %v", apperrors.ErrValidation, err)
		}
		// Delayed payment methods complete the session before the money
		// arrives; async_payment_succeeded follows once it does.
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			return nil, nil
		}
		evt := sessionEvent(event, domain.PaymentEventCompleted, &s)
		return &evt, nil

	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: decoding checkout session: %v", apperrors.ErrValidation, err)
		}
		evt := sessionEvent(event, domain.PaymentEventExpired, &s)
		return &evt, nil

	case stripe.EventTypeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("%w: decoding charge: %v", apperrors.ErrValidation, err)
		}
		evt := domain.PaymentEvent{
			Provider:         providerName,
			EventID:          event.ID,
			Type:             domain.PaymentEventRefunded,
			ChargeID:         ch.ID,
			AmountTotalCents: ch.AmountRefunded,
			Metadata:         ch.Metadata,
		}
		if ch.PaymentIntent != nil {
			evt.PaymentIntentID = ch.PaymentIntent.ID
		}
		return &evt, nil
	}
	return nil, nil
}

func sessionEvent(event stripe.Event, typ domain.PaymentEventType, s *stripe.CheckoutSession) domain.PaymentEvent {
	evt := domain.PaymentEvent{
		Provider:         providerName,
		EventID:          event.ID,
		Type:             typ,
		SessionID:        s.ID,
		AmountTotalCents: s.AmountTotal,
		CustomerEmail:    s.CustomerEmail,
		Metadata:         s.Metadata,
	}
	if s.PaymentIntent != nil {
		evt.PaymentIntentID = s.PaymentIntent.ID
	}
	if evt.CustomerEmail == "" && s.CustomerDetails != nil {
		evt.CustomerEmail = s.CustomerDetails.Email
	}
	return evt
}
