package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
)

const testSecret = "whsec_test_secret"

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func TestVerifyAndParse_CheckoutCompleted(t *testing.T) {
	body, header := signed(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_intent": "pi_123",
			"payment_status": "paid",
			"amount_total": 5000,
			"customer_details": {"email": "parent@example.com"},
			"metadata": {"kind": "registration", "event_id": "ev-1", "player_id": "p-1"}
		}}
	}`)

	evt, err := NewProcessor(testSecret).VerifyAndParse(body, header)
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Equal(t, domain.PaymentEventCompleted, evt.Type)
	assert.Equal(t, "cs_test_1", evt.SessionID)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
	assert.Equal(t, int64(5000), evt.AmountTotalCents)
	assert.Equal(t, "parent@example.com", evt.CustomerEmail)
	assert.Equal(t, "ev-1", evt.Metadata["event_id"])
	assert.Equal(t, "completed:cs_test_1", evt.DedupKey())
}

func TestVerifyAndParse_UnpaidCompletionIsIgnored(t *testing.T) {
	body, header := signed(t, `{"id":"evt_2","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_test_2","object":"checkout.session","payment_status":"unpaid"}}}`)

	evt, err := NewProcessor(testSecret).VerifyAndParse(body, header)
	require.NoError(t, err)
	assert.Nil(t, evt)
}

func TestVerifyAndParse_ChargeRefunded(t *testing.T) {
	body, header := signed(t, `{"id":"evt_3","object":"event","type":"charge.refunded",
		"data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_123","amount_refunded":2500}}}`)

	evt, err := NewProcessor(testSecret).VerifyAndParse(body, header)
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Equal(t, domain.PaymentEventRefunded, evt.Type)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
	assert.Equal(t, "refunded:ch_1", evt.DedupKey())
}

func TestVerifyAndParse_UnhandledType(t *testing.T) {
	body, header := signed(t, `{"id":"evt_4","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	evt, err := NewProcessor(testSecret).VerifyAndParse(body, header)
	require.NoError(t, err)
	assert.Nil(t, evt)
}

func TestVerifyAndParse_RejectsBadSignature(t *testing.T) {
	body, _ := signed(t, `{"id":"evt_5","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	_, err := NewProcessor(testSecret).VerifyAndParse(body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrSignature)

	_, err = NewProcessor("").VerifyAndParse(body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrSignature)
}

func TestCreateCheckoutSession(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "checkout-order-order-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_9"}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	gw := NewGateway("sk_test_123", "usd", &stripe.Backends{API: backend})

	session, err := gw.CreateCheckoutSession(context.Background(), domain.CheckoutSessionRequest{
		Lines:         []domain.CheckoutLine{{Name: "Home jersey - Youth M", UnitAmountCent: 2400, Quantity: 2}},
		CustomerEmail: "parent@example.com",
		Metadata:      map[string]string{"kind": "merch", "order_id": "order-1"},
		SuccessURL:    "https://club.example/ok",
		CancelURL:     "https://club.example/cancel",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", session.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_9", session.URL)
	assert.Equal(t, []string{"payment"}, form["mode"])
	assert.Equal(t, []string{"2400"}, form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, []string{"2"}, form["line_items[0][quantity]"])
	assert.Equal(t, []string{"order-1"}, form["metadata[order_id]"])
	assert.Equal(t, []string{"order-1"}, form["payment_intent_data[metadata][order_id]"])
}

func TestCreateCheckoutSession_MapsRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"try later"}}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	gw := NewGateway("sk_test_123", "usd", &stripe.Backends{API: backend})

	_, err := gw.CreateCheckoutSession(context.Background(), domain.CheckoutSessionRequest{
		Lines: []domain.CheckoutLine{{Name: "Scarf", UnitAmountCent: 1500, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperrors.ErrRemote)
}
