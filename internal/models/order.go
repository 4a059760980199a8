package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the orders row; the shipping address is stored as JSONB.
type Order struct {
	OrderID            string         `json:"orderID"`
	SessionID          string         `json:"sessionID"`
	PaymentIntentID    sql.NullString `json:"paymentIntentID"`
	CustomerEmail      string         `json:"customerEmail"`
	AmountTotalCents   int64          `json:"amountTotalCents"`
	Status             string         `json:"status"`
	FulfillmentStatus  string         `json:"fulfillmentStatus"`
	FulfillmentOrderID sql.NullString `json:"fulfillmentOrderID"`
	ShippingAddress    []byte         `json:"shippingAddress"`
	IsBestEffort       bool           `json:"isBestEffort"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// OrderItem is the order_items row.
type OrderItem struct {
	OrderItemID string          `json:"orderItemID"`
	OrderID     string          `json:"orderID"`
	ProductID   string          `json:"productID"`
	VariantID   sql.NullString  `json:"variantID"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}
