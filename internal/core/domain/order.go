package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle of an order or registration payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// FulfillmentStatus tracks submission of print-on-demand items.
type FulfillmentStatus string

const (
	FulfillmentNotRequired FulfillmentStatus = "NOT_REQUIRED"
	FulfillmentPending     FulfillmentStatus = "PENDING"
	FulfillmentSubmitted   FulfillmentStatus = "SUBMITTED"
	FulfillmentFailed      FulfillmentStatus = "FAILED"
)

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type Order struct {
	OrderID            string            `json:"orderID"`
	SessionID          string            `json:"sessionID"`
	PaymentIntentID    *string           `json:"paymentIntentID,omitempty"`
	CustomerEmail      string            `json:"customerEmail"`
	AmountTotalCents   int64             `json:"amountTotalCents"`
	Status             PaymentStatus     `json:"status"`
	FulfillmentStatus  FulfillmentStatus `json:"fulfillmentStatus"`
	FulfillmentOrderID *string           `json:"fulfillmentOrderID,omitempty"`
	ShippingAddress    *ShippingAddress  `json:"shippingAddress,omitempty"`
	IsBestEffort       bool              `json:"isBestEffort"`
	Items              []OrderItem       `json:"items"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type OrderItem struct {
	OrderItemID string          `json:"orderItemID"`
	OrderID     string          `json:"orderID"`
	ProductID   string          `json:"productID"`
	VariantID   *string         `json:"variantID,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type EventRegistration struct {
	RegistrationID  string          `json:"registrationID"`
	EventID         string          `json:"eventID"`
	PlayerID        string          `json:"playerID"`
	SessionID       *string         `json:"sessionID,omitempty"`
	PaymentIntentID *string         `json:"paymentIntentID,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          PaymentStatus   `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CheckoutItem is a requested line in a merch checkout.
type CheckoutItem struct {
	ProductID string
	VariantID *string
	Quantity  int
}

// CheckoutRequest is a merch checkout request.
type CheckoutRequest struct {
	Items           []CheckoutItem
	CustomerEmail   string
	ShippingAddress *ShippingAddress
	Actor           string
}

// CheckoutLine is a priced line handed to the payment processor.
type CheckoutLine struct {
	Name           string
	UnitAmountCent int64
	Quantity       int64
}

// CheckoutSessionRequest is what the payment gateway needs to open a hosted checkout.
type CheckoutSessionRequest struct {
	Lines         []CheckoutLine
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the processor's hosted checkout.
type CheckoutSession struct {
	SessionID string `json:"sessionID"`
	URL       string `json:"url"`
}

// PaymentEventType is the normalized kind of an inbound payment webhook.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "checkout.session.completed"
	PaymentEventExpired   PaymentEventType = "checkout.session.expired"
	PaymentEventRefunded  PaymentEventType = "charge.refunded"
)

// PaymentEvent is a verified, provider-neutral payment webhook.
type PaymentEvent struct {
	Provider         string
	EventID          string
	Type             PaymentEventType
	SessionID        string
	ChargeID         string
	PaymentIntentID  string
	AmountTotalCents int64
	CustomerEmail    string
	Metadata         map[string]string
}

// DedupKey is the replay key stored alongside the state change.
func (e PaymentEvent) DedupKey() string {
	switch e.Type {
	case PaymentEventCompleted:
		return "completed:" + e.SessionID
	case PaymentEventExpired:
		return "expired:" + e.SessionID
	case PaymentEventRefunded:
		return "refunded:" + e.ChargeID
	}
	return string(e.Type) + ":" + e.EventID
}

// ShippingQuote is the POD provider's shipping cost in cents, per method.
type ShippingQuote struct {
	StandardCents int64  `json:"standardCents"`
	ExpressCents  *int64 `json:"expressCents,omitempty"`
}

// CentsToDecimal converts minor units into a currency amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents converts a currency amount into minor units, rounding half away from zero.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FulfillmentLine is a POD line keyed by the provider's ids.
type FulfillmentLine struct {
	ExternalProductID string
	ExternalVariantID string
	Quantity          int
}

// FulfillmentRequest is a paid order forwarded to the POD provider, or a
// shipping quote request for prospective lines.
type FulfillmentRequest struct {
	ExternalOrderID string
	Lines           []FulfillmentLine
	Address         ShippingAddress
}
