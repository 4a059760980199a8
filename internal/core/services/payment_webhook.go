package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
)

// HandleWebhook verifies and applies a payment notification. The receipt row
// and every state change it guards commit in one transaction, so a replay
// either finds the receipt and stops, or the first attempt left nothing behind.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s.Webhooks == nil {
		return fmt.Errorf("%w: webhook verifier is not configured", apperrors.ErrRemote)
	}
	evt, err := s.Webhooks.VerifyAndParse(payload, signatureHeader)
	if err != nil {
		s.LogWarn(ctx, "Rejected payment webhook", slog.String("error", err.Error()))
		return err
	}
	if evt == nil {
		s.LogDebug(ctx, "Ignoring unhandled payment webhook type")
		return nil
	}

	logger := s.GetLogger(ctx).With(
		slog.String("provider", evt.Provider),
		slog.String("event_id", evt.EventID),
		slog.String("event_type", string(evt.Type)),
		slog.String("dedup_key", evt.DedupKey()))

	var toFulfill *domain.Order
	replay := false
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		fresh, err := s.Receipts.RecordReceiptInTx(ctx, tx, evt.Provider, evt.DedupKey(), string(evt.Type), s.now())
		if err != nil {
			return err
		}
		if !fresh {
			replay = true
			return nil
		}
		switch evt.Type {
		case domain.PaymentEventCompleted:
			toFulfill, err = s.applyCompleted(ctx, logger, tx, *evt)
			return err
		case domain.PaymentEventExpired:
			return s.applyExpired(ctx, logger, tx, *evt)
		case domain.PaymentEventRefunded:
			return s.applyRefunded(ctx, logger, tx, *evt)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to apply payment webhook", slog.String("error", err.Error()))
		return err
	}
	if replay {
		logger.Info("Payment webhook already processed, ignoring replay")
		return nil
	}
	logger.Info("Payment webhook applied")

	if toFulfill != nil {
		s.submitFulfillment(ctx, logger, *toFulfill)
	}
	return nil
}

// applyCompleted returns the order when it still needs POD fulfillment.
func (s *checkoutService) applyCompleted(ctx context.Context, logger *slog.Logger, tx pgx.Tx, evt domain.PaymentEvent) (*domain.Order, error) {
	intent := optionalString(evt.PaymentIntentID)
	now := s.now()

	order, err := s.Orders.FindOrderBySessionIDForUpdate(ctx, tx, evt.SessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if order == nil {
		reg, err := s.Registrations.FindRegistrationBySessionIDForUpdate(ctx, tx, evt.SessionID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if reg != nil {
			return nil, s.completeRegistration(ctx, logger, tx, *reg, evt, intent, now)
		}
		return s.createBestEffort(ctx, logger, tx, evt, intent, now)
	}

	if order.Status == domain.PaymentCompleted {
		logger.Warn("Order already completed", slog.String("order_id", order.OrderID))
		return nil, nil
	}
	if err := s.Orders.UpdateOrderStatusInTx(ctx, tx, order.OrderID, domain.PaymentCompleted, intent, now); err != nil {
		return nil, err
	}
	order.Status = domain.PaymentCompleted
	order.PaymentIntentID = intent
	if err := s.decrementInventory(ctx, logger, tx, order.Items, now); err != nil {
		return nil, err
	}
	if order.FulfillmentStatus == domain.FulfillmentPending {
		return order, nil
	}
	return nil, nil
}

func (s *checkoutService) completeRegistration(ctx context.Context, logger *slog.Logger, tx pgx.Tx, reg domain.EventRegistration, evt domain.PaymentEvent, intent *string, now time.Time) error {
	if reg.Status == domain.PaymentCompleted {
		logger.Warn("Registration already completed", slog.String("registration_id", reg.RegistrationID))
		return nil
	}
	if err := s.Registrations.UpdateRegistrationStatusInTx(ctx, tx, reg.RegistrationID, domain.PaymentCompleted, intent, now); err != nil {
		return err
	}
	return s.recordRegistrationPayment(ctx, logger, tx, reg, evt)
}

// recordRegistrationPayment posts the registration fee and its payment to the
// player's dues account when the event is dues-bearing. Both entries land in
// the caller's transaction.
func (s *checkoutService) recordRegistrationPayment(ctx context.Context, logger *slog.Logger, tx pgx.Tx, reg domain.EventRegistration, evt domain.PaymentEvent) error {
	event, err := s.Events.FindEventByID(ctx, reg.EventID)
	if err != nil {
		return fmt.Errorf("failed to load event %s for registration: %w", reg.EventID, err)
	}
	if !event.IsDuesBearing {
		return nil
	}
	amount := domain.CentsToDecimal(evt.AmountTotalCents)
	if !amount.IsPositive() {
		amount = reg.Amount
	}
	if !amount.IsPositive() {
		logger.Warn("Dues-bearing registration paid with no amount", slog.String("registration_id", reg.RegistrationID))
		return nil
	}
	fee := reg.Amount
	if !fee.IsPositive() {
		fee = amount
	}
	regID := reg.RegistrationID
	if _, err := s.Ledger.AddChargeInTx(ctx, tx, domain.LedgerEntryRequest{
		PlayerID:              reg.PlayerID,
		Amount:                fee,
		Description:           "Registration: " + event.Title,
		RelatedRegistrationID: &regID,
		Actor:                 domain.SystemActor,
	}); err != nil {
		return err
	}
	paymentRef := evt.SessionID
	if evt.PaymentIntentID != "" {
		paymentRef = evt.PaymentIntentID
	}
	_, err = s.Ledger.AddPaymentInTx(ctx, tx, domain.LedgerEntryRequest{
		PlayerID:              reg.PlayerID,
		Amount:                amount,
		Description:           "Registration payment: " + event.Title,
		RelatedPaymentID:      &paymentRef,
		RelatedRegistrationID: &regID,
		Actor:                 domain.SystemActor,
	})
	return err
}

// createBestEffort records a completed payment that matches no pending record,
// using whatever the session metadata carries.
func (s *checkoutService) createBestEffort(ctx context.Context, logger *slog.Logger, tx pgx.Tx, evt domain.PaymentEvent, intent *string, now time.Time) (*domain.Order, error) {
	md := evt.Metadata
	logger.Warn("No pending record for completed session, creating best-effort record",
		slog.String("session_id", evt.SessionID), slog.Any("metadata", md))

	if md[metaEventID] != "" && md[metaPlayerID] != "" {
		sessionID := evt.SessionID
		reg := domain.EventRegistration{
			RegistrationID:  uuid.NewString(),
			EventID:         md[metaEventID],
			PlayerID:        md[metaPlayerID],
			SessionID:       &sessionID,
			PaymentIntentID: intent,
			Amount:          domain.CentsToDecimal(evt.AmountTotalCents),
			Status:          domain.PaymentCompleted,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.Registrations.SaveRegistrationInTx(ctx, tx, reg); err != nil {
			return nil, err
		}
		return nil, s.recordRegistrationPayment(ctx, logger, tx, reg, evt)
	}

	order := domain.Order{
		OrderID:           uuid.NewString(),
		SessionID:         evt.SessionID,
		PaymentIntentID:   intent,
		CustomerEmail:     evt.CustomerEmail,
		AmountTotalCents:  evt.AmountTotalCents,
		Status:            domain.PaymentCompleted,
		FulfillmentStatus: domain.FulfillmentNotRequired,
		IsBestEffort:      true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if productID := md[metaProductID]; productID != "" {
		product, err := s.Products.FindProductByID(ctx, productID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if product != nil {
			qty, convErr := strconv.Atoi(md[metaQuantity])
			if convErr != nil || qty <= 0 {
				qty = 1
			}
			item := domain.OrderItem{
				OrderItemID: uuid.NewString(),
				OrderID:     order.OrderID,
				ProductID:   product.ProductID,
				VariantID:   optionalString(md[metaVariantID]),
				Quantity:    qty,
				UnitPrice:   domain.CentsToDecimal(evt.AmountTotalCents).Div(decimal.NewFromInt(int64(qty))).Round(2),
			}
			order.Items = append(order.Items, item)
			if product.IsPrintOnDemand() {
				// No shipping address survives in metadata.
				order.FulfillmentStatus = domain.FulfillmentFailed
				logger.Warn("Best-effort order for print-on-demand product cannot be fulfilled",
					slog.String("order_id", order.OrderID), slog.String("product_id", product.ProductID))
			}
		} else {
			logger.Warn("Best-effort order references unknown product", slog.String("product_id", productID))
		}
	}
	if err := s.Orders.SaveOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}
	return nil, s.decrementInventory(ctx, logger, tx, order.Items, now)
}

func (s *checkoutService) decrementInventory(ctx context.Context, logger *slog.Logger, tx pgx.Tx, items []domain.OrderItem, now time.Time) error {
	for _, item := range items {
		remaining, err := s.Products.DecrementInventoryInTx(ctx, tx, item.ProductID, item.Quantity, now)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory for product %s: %w", item.ProductID, err)
		}
		if remaining < 0 {
			logger.Warn("Inventory went negative",
				slog.String("product_id", item.ProductID),
				slog.Int("inventory", remaining))
		}
	}
	return nil
}

func (s *checkoutService) applyExpired(ctx context.Context, logger *slog.Logger, tx pgx.Tx, evt domain.PaymentEvent) error {
	now := s.now()
	order, err := s.Orders.FindOrderBySessionIDForUpdate(ctx, tx, evt.SessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if order != nil {
		if order.Status != domain.PaymentPending {
			return nil
		}
		return s.Orders.UpdateOrderStatusInTx(ctx, tx, order.OrderID, domain.PaymentFailed, nil, now)
	}
	reg, err := s.Registrations.FindRegistrationBySessionIDForUpdate(ctx, tx, evt.SessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if reg != nil {
		if reg.Status != domain.PaymentPending {
			return nil
		}
		return s.Registrations.UpdateRegistrationStatusInTx(ctx, tx, reg.RegistrationID, domain.PaymentFailed, nil, now)
	}
	logger.Warn("Expired session matches no pending record", slog.String("session_id", evt.SessionID))
	return nil
}

// applyRefunded marks the purchase refunded. The dues ledger is left as is;
// a treasurer posts any reversal explicitly.
func (s *checkoutService) applyRefunded(ctx context.Context, logger *slog.Logger, tx pgx.Tx, evt domain.PaymentEvent) error {
	if evt.PaymentIntentID == "" {
		logger.Warn("Refund notification without payment intent", slog.String("charge_id", evt.ChargeID))
		return nil
	}
	now := s.now()
	order, err := s.Orders.FindOrderByPaymentIntentForUpdate(ctx, tx, evt.PaymentIntentID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if order != nil {
		return s.Orders.UpdateOrderStatusInTx(ctx, tx, order.OrderID, domain.PaymentRefunded, nil, now)
	}
	reg, err := s.Registrations.FindRegistrationByPaymentIntentForUpdate(ctx, tx, evt.PaymentIntentID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if reg != nil {
		logger.Info("Registration refunded, dues ledger not reversed", slog.String("registration_id", reg.RegistrationID))
		return s.Registrations.UpdateRegistrationStatusInTx(ctx, tx, reg.RegistrationID, domain.PaymentRefunded, nil, now)
	}
	logger.Warn("Refund matches no order or registration", slog.String("payment_intent_id", evt.PaymentIntentID))
	return nil
}

// submitFulfillment forwards a paid POD order to the provider. Failures are
// recorded on the order and never undo the payment.
func (s *checkoutService) submitFulfillment(ctx context.Context, logger *slog.Logger, order domain.Order) {
	logger = logger.With(slog.String("order_id", order.OrderID))
	status := domain.FulfillmentFailed
	var externalID *string

	id, err := s.trySubmit(ctx, order)
	if err != nil {
		logger.Error("Print-on-demand submission failed", slog.String("error", err.Error()))
	} else {
		status = domain.FulfillmentSubmitted
		externalID = &id
		logger.Info("Print-on-demand order submitted", slog.String("fulfillment_order_id", id))
	}
	if err := s.Orders.UpdateOrderFulfillment(ctx, order.OrderID, status, externalID, s.now()); err != nil {
		logger.Error("Failed to record fulfillment status", slog.String("error", err.Error()))
	}
}

func (s *checkoutService) trySubmit(ctx context.Context, order domain.Order) (string, error) {
	if s.Fulfillment == nil {
		return "", errors.New("fulfillment provider is not configured")
	}
	if order.ShippingAddress == nil {
		return "", errors.New("order has no shipping address")
	}
	items := make([]domain.CheckoutItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, domain.CheckoutItem{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity})
	}
	priced, err := s.resolveForFulfillment(ctx, items)
	if err != nil {
		return "", err
	}
	lines := fulfillmentLines(priced)
	if len(lines) == 0 {
		return "", errors.New("order has no print-on-demand lines")
	}
	return s.Fulfillment.SubmitOrder(ctx, domain.FulfillmentRequest{
		ExternalOrderID: order.OrderID,
		Lines:           lines,
		Address:         *order.ShippingAddress,
	})
}

// resolveForFulfillment looks up catalog rows without the availability checks
// applied at checkout; the customer has already paid.
func (s *checkoutService) resolveForFulfillment(ctx context.Context, items []domain.CheckoutItem) ([]pricedItem, error) {
	productIDs := make([]string, 0, len(items))
	variantIDs := make([]string, 0, len(items))
	for _, it := range items {
		productIDs = append(productIDs, it.ProductID)
		if it.VariantID != nil {
			variantIDs = append(variantIDs, *it.VariantID)
		}
	}
	products, err := s.Products.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	variants, err := s.Variants.FindVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	out := make([]pricedItem, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		pi := pricedItem{item: it, product: p}
		if it.VariantID != nil {
			if v, ok := variants[*it.VariantID]; ok {
				pi.variant = &v
			}
		}
		out = append(out, pi)
	}
	return out, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
