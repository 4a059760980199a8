package dto

import "github.com/SscSPs/club_management_app/internal/core/domain"

type CheckoutItemRequest struct {
	ProductID string  `json:"productID" binding:"required"`
	VariantID *string `json:"variantID"`
	Quantity  int     `json:"quantity" binding:"required,gte=1,lte=100"`
}

type ShippingAddressRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Country   string `json:"country" binding:"required,len=2"`
	Region    string `json:"region"`
	Address1  string `json:"address1" binding:"required"`
	Address2  string `json:"address2"`
	City      string `json:"city" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
}

func (a ShippingAddressRequest) ToDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Country:   a.Country,
		Region:    a.Region,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Zip:       a.Zip,
	}
}

// StartCheckoutRequest opens a merch checkout.
type StartCheckoutRequest struct {
	Items           []CheckoutItemRequest   `json:"items" binding:"required,min=1,dive"`
	CustomerEmail   string                  `json:"customerEmail" binding:"required,email"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress"`
}

func toDomainItems(items []CheckoutItemRequest) []domain.CheckoutItem {
	out := make([]domain.CheckoutItem, len(items))
	for i, it := range items {
		out[i] = domain.CheckoutItem{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity}
	}
	return out
}

func (r StartCheckoutRequest) ToDomain(userID string) domain.CheckoutRequest {
	req := domain.CheckoutRequest{
		Items:         toDomainItems(r.Items),
		CustomerEmail: r.CustomerEmail,
		Actor:         userID,
	}
	if r.ShippingAddress != nil {
		addr := r.ShippingAddress.ToDomain()
		req.ShippingAddress = &addr
	}
	return req
}

// ShippingQuoteRequest asks the POD provider for shipping costs.
type ShippingQuoteRequest struct {
	Items   []CheckoutItemRequest  `json:"items" binding:"required,min=1,dive"`
	Address ShippingAddressRequest `json:"address" binding:"required"`
}

func (r ShippingQuoteRequest) DomainItems() []domain.CheckoutItem {
	return toDomainItems(r.Items)
}

// StartRegistrationRequest opens a registration checkout for a player.
type StartRegistrationRequest struct {
	PlayerID      string `json:"playerID" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
}

// RegistrationCheckoutResponse carries the registration and, when a fee is due, its checkout.
type RegistrationCheckoutResponse struct {
	Registration domain.EventRegistration `json:"registration"`
	Checkout     *domain.CheckoutSession  `json:"checkout,omitempty"`
}
