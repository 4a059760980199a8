package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// Checkout session metadata keys. The completion webhook falls back to them
// when no pending record matches the session.
const (
	metaKind           = "kind"
	metaOrderID        = "order_id"
	metaRegistrationID = "registration_id"
	metaProductID      = "product_id"
	metaVariantID      = "variant_id"
	metaQuantity       = "quantity"
	metaEventID        = "event_id"
	metaPlayerID       = "player_id"

	kindMerch        = "merch"
	kindRegistration = "registration"
)

// CheckoutDeps groups the collaborators of the checkout service.
type CheckoutDeps struct {
	Orders        portsrepo.OrderRepository
	Registrations portsrepo.RegistrationRepository
	Receipts      portsrepo.WebhookReceiptRepository
	Products      portsrepo.ProductRepository
	Variants      portsrepo.VariantRepository
	Events        portsrepo.EventRepository
	Players       portsrepo.PlayerReader
	Ledger        portssvc.DuesLedgerTxSvc
	Payments      portssvc.PaymentGateway
	Webhooks      portssvc.WebhookVerifier
	Fulfillment   portssvc.FulfillmentProvider
	SuccessURL    string
	CancelURL     string
}

type checkoutService struct {
	BaseService
	CheckoutDeps
}

func NewCheckoutService(deps CheckoutDeps) portssvc.CheckoutSvcFacade {
	return &checkoutService{BaseService: newBaseService(), CheckoutDeps: deps}
}

var _ portssvc.CheckoutSvcFacade = (*checkoutService)(nil)

// pricedItem is a checkout item resolved against the catalog.
type pricedItem struct {
	item    domain.CheckoutItem
	product domain.Product
	variant *domain.ProductVariant
	price   decimal.Decimal
}

func (p pricedItem) name() string {
	if p.variant != nil {
		return p.product.Name + " - " + p.variant.Title
	}
	return p.product.Name
}

func (s *checkoutService) resolveItems(ctx context.Context, items []domain.CheckoutItem) ([]pricedItem, error) {
	if len(items) == 0 {
		return nil, apperrors.NewBadRequestError("at least one item is required")
	}
	productIDs := make([]string, 0, len(items))
	variantIDs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apperrors.NewBadRequestError("quantity must be positive")
		}
		productIDs = append(productIDs, it.ProductID)
		if it.VariantID != nil {
			variantIDs = append(variantIDs, *it.VariantID)
		}
	}

	products, err := s.Products.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	variants := map[string]domain.ProductVariant{}
	if len(variantIDs) > 0 {
		variants, err = s.Variants.FindVariantsByIDs(ctx, variantIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load variants: %w", err)
		}
	}

	priced := make([]pricedItem, 0, len(items))
	for _, it := range items {
		product, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, it.ProductID)
		}
		p := pricedItem{item: it, product: product, price: product.Price}
		if it.VariantID != nil {
			v, ok := variants[*it.VariantID]
			if !ok || v.ProductID != product.ProductID {
				return nil, fmt.Errorf("%w: variant %s of product %s", apperrors.ErrNotFound, *it.VariantID, product.ProductID)
			}
			if !v.IsEnabled || !v.IsAvailable {
				return nil, apperrors.NewBadRequestError(fmt.Sprintf("variant %s is not available", v.VariantID))
			}
			p.variant = &v
			p.price = v.Price
		} else if product.IsPrintOnDemand() {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("product %s requires a variant", product.ProductID))
		}
		priced = append(priced, p)
	}
	return priced, nil
}

// StartCheckout prices the cart, opens a hosted checkout and stores a PENDING order.
func (s *checkoutService) StartCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, apperrors.NewBadRequestError("customer email is required")
	}
	if s.Payments == nil {
		return nil, fmt.Errorf("%w: payment gateway is not configured", apperrors.ErrRemote)
	}
	priced, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := domain.Order{
		OrderID:           uuid.NewString(),
		CustomerEmail:     req.CustomerEmail,
		Status:            domain.PaymentPending,
		FulfillmentStatus: domain.FulfillmentNotRequired,
		ShippingAddress:   req.ShippingAddress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	lines := make([]domain.CheckoutLine, 0, len(priced))
	for _, p := range priced {
		if p.product.IsPrintOnDemand() {
			order.FulfillmentStatus = domain.FulfillmentPending
		}
		cents := domain.DecimalToCents(p.price)
		lines = append(lines, domain.CheckoutLine{Name: p.name(), UnitAmountCent: cents, Quantity: int64(p.item.Quantity)})
		order.AmountTotalCents += cents * int64(p.item.Quantity)
		order.Items = append(order.Items, domain.OrderItem{
			OrderItemID: uuid.NewString(),
			OrderID:     order.OrderID,
			ProductID:   p.product.ProductID,
			VariantID:   p.item.VariantID,
			Quantity:    p.item.Quantity,
			UnitPrice:   p.price,
		})
	}
	if order.FulfillmentStatus == domain.FulfillmentPending && req.ShippingAddress == nil {
		return nil, apperrors.NewBadRequestError("shipping address is required for print-on-demand items")
	}

	metadata := map[string]string{metaKind: kindMerch, metaOrderID: order.OrderID}
	if len(priced) == 1 {
		metadata[metaProductID] = priced[0].product.ProductID
		metadata[metaQuantity] = strconv.Itoa(priced[0].item.Quantity)
		if priced[0].item.VariantID != nil {
			metadata[metaVariantID] = *priced[0].item.VariantID
		}
	}

	session, err := s.Payments.CreateCheckoutSession(ctx, domain.CheckoutSessionRequest{
		Lines:         lines,
		CustomerEmail: req.CustomerEmail,
		Metadata:      metadata,
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create checkout session", slog.String("order_id", order.OrderID))
		return nil, err
	}
	order.SessionID = session.SessionID

	if err := s.inTx(ctx, func(tx pgx.Tx) error {
		return s.Orders.SaveOrderInTx(ctx, tx, order)
	}); err != nil {
		// The session expires unpaid on its own.
		s.LogError(ctx, err, "Failed to save order for checkout session", slog.String("session_id", session.SessionID))
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.LogInfo(ctx, "Checkout started",
		slog.String("order_id", order.OrderID),
		slog.String("session_id", session.SessionID),
		slog.Int64("amount_total_cents", order.AmountTotalCents))
	return session, nil
}

// StartRegistrationCheckout registers a player for an event. A free event
// completes immediately; otherwise a hosted checkout is opened. Nothing is
// posted to the dues ledger until the payment completes.
func (s *checkoutService) StartRegistrationCheckout(ctx context.Context, eventID string, playerID string, customerEmail string, userID string) (*domain.EventRegistration, *domain.CheckoutSession, error) {
	event, err := s.Events.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
		}
		return nil, nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.IsOrphaned {
		return nil, nil, apperrors.NewBadRequestError("event is no longer on the calendar")
	}
	player, err := s.Players.FindPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: player %s", apperrors.ErrNotFound, playerID)
		}
		return nil, nil, fmt.Errorf("failed to load player: %w", err)
	}

	now := s.now()
	reg := domain.EventRegistration{
		RegistrationID: uuid.NewString(),
		EventID:        event.EventID,
		PlayerID:       player.PlayerID,
		Amount:         event.RegistrationFee,
		Status:         domain.PaymentCompleted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if !event.RegistrationFee.IsPositive() {
		if err := s.inTx(ctx, func(tx pgx.Tx) error {
			return s.Registrations.SaveRegistrationInTx(ctx, tx, reg)
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to save registration: %w", err)
		}
		return &reg, nil, nil
	}

	if s.Payments == nil {
		return nil, nil, fmt.Errorf("%w: payment gateway is not configured", apperrors.ErrRemote)
	}
	session, err := s.Payments.CreateCheckoutSession(ctx, domain.CheckoutSessionRequest{
		Lines: []domain.CheckoutLine{{
			Name:           "Registration: " + event.Title + " (" + player.FullName() + ")",
			UnitAmountCent: domain.DecimalToCents(event.RegistrationFee),
			Quantity:       1,
		}},
		CustomerEmail: customerEmail,
		Metadata: map[string]string{
			metaKind:           kindRegistration,
			metaRegistrationID: reg.RegistrationID,
			metaEventID:        event.EventID,
			metaPlayerID:       player.PlayerID,
		},
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create registration checkout session", slog.String("event_id", eventID))
		return nil, nil, err
	}
	reg.SessionID = &session.SessionID
	reg.Status = domain.PaymentPending

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		return s.Registrations.SaveRegistrationInTx(ctx, tx, reg)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save registration", slog.String("session_id", session.SessionID))
		return nil, nil, fmt.Errorf("failed to save registration: %w", err)
	}

	s.LogInfo(ctx, "Registration checkout started",
		slog.String("registration_id", reg.RegistrationID),
		slog.String("event_id", event.EventID),
		slog.String("user_id", userID),
		slog.Bool("dues_bearing", event.IsDuesBearing))
	return &reg, session, nil
}

func (s *checkoutService) QuoteShipping(ctx context.Context, items []domain.CheckoutItem, address domain.ShippingAddress) (*domain.ShippingQuote, error) {
	if s.Fulfillment == nil {
		return nil, fmt.Errorf("%w: fulfillment provider is not configured", apperrors.ErrRemote)
	}
	priced, err := s.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}
	lines := fulfillmentLines(priced)
	if len(lines) == 0 {
		return nil, apperrors.NewBadRequestError("no print-on-demand items to ship")
	}
	return s.Fulfillment.QuoteShipping(ctx, domain.FulfillmentRequest{Lines: lines, Address: address})
}

func fulfillmentLines(priced []pricedItem) []domain.FulfillmentLine {
	var lines []domain.FulfillmentLine
	for _, p := range priced {
		if !p.product.IsPrintOnDemand() || p.variant == nil {
			continue
		}
		lines = append(lines, domain.FulfillmentLine{
			ExternalProductID: *p.product.PrintifyProductID,
			ExternalVariantID: p.variant.ExternalID,
			Quantity:          p.item.Quantity,
		})
	}
	return lines
}

// inTx runs fn in a transaction, committing on success.
func (s *checkoutService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Orders.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := s.Orders.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back checkout transaction")
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return s.Orders.Commit(ctx, tx)
}
