package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/models"
)

func ToModelOrder(d domain.Order) (models.Order, error) {
	m := models.Order{
		OrderID:            d.OrderID,
		SessionID:          d.SessionID,
		PaymentIntentID:    NullString(d.PaymentIntentID),
		CustomerEmail:      d.CustomerEmail,
		AmountTotalCents:   d.AmountTotalCents,
		Status:             string(d.Status),
		FulfillmentStatus:  string(d.FulfillmentStatus),
		FulfillmentOrderID: NullString(d.FulfillmentOrderID),
		IsBestEffort:       d.IsBestEffort,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.ShippingAddress != nil {
		raw, err := json.Marshal(d.ShippingAddress)
		if err != nil {
			return models.Order{}, fmt.Errorf("failed to encode shipping address: %w", err)
		}
		m.ShippingAddress = raw
	}
	return m, nil
}

func ToDomainOrder(m models.Order, items []models.OrderItem) (domain.Order, error) {
	d := domain.Order{
		OrderID:            m.OrderID,
		SessionID:          m.SessionID,
		PaymentIntentID:    StringPtr(m.PaymentIntentID),
		CustomerEmail:      m.CustomerEmail,
		AmountTotalCents:   m.AmountTotalCents,
		Status:             domain.PaymentStatus(m.Status),
		FulfillmentStatus:  domain.FulfillmentStatus(m.FulfillmentStatus),
		FulfillmentOrderID: StringPtr(m.FulfillmentOrderID),
		IsBestEffort:       m.IsBestEffort,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if len(m.ShippingAddress) > 0 {
		var addr domain.ShippingAddress
		if err := json.Unmarshal(m.ShippingAddress, &addr); err != nil {
			return domain.Order{}, fmt.Errorf("failed to decode shipping address for order %s: %w", m.OrderID, err)
		}
		d.ShippingAddress = &addr
	}
	d.Items = make([]domain.OrderItem, len(items))
	for i, it := range items {
		d.Items[i] = domain.OrderItem{
			OrderItemID: it.OrderItemID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			VariantID:   StringPtr(it.VariantID),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return d, nil
}

func ToModelOrderItem(d domain.OrderItem) models.OrderItem {
	return models.OrderItem{
		OrderItemID: d.OrderItemID,
		OrderID:     d.OrderID,
		ProductID:   d.ProductID,
		VariantID:   NullString(d.VariantID),
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
	}
}
