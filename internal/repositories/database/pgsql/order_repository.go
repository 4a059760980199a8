package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/club_management_app/internal/models"
	"github.com/SscSPs/club_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxOrderRepository struct {
	BaseRepository
}

func newPgxOrderRepository(pool DBPool) portsrepo.OrderRepository {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OrderRepository = (*PgxOrderRepository)(nil)

const orderColumns = `order_id, session_id, payment_intent_id, customer_email, amount_total_cents, status, fulfillment_status, fulfillment_order_id, shipping_address, is_best_effort, created_at, updated_at`

// SaveOrderInTx inserts the order and its items.
func (r *PgxOrderRepository) SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	m, err := mapping.ToModelOrder(order)
	if err != nil {
		return err
	}
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	_, err = tx.Exec(ctx, query, m.OrderID, m.SessionID, m.PaymentIntentID, m.CustomerEmail, m.AmountTotalCents,
		m.Status, m.FulfillmentStatus, m.FulfillmentOrderID, m.ShippingAddress, m.IsBestEffort, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order for session %s already exists", apperrors.ErrDuplicate, m.SessionID)
		}
		return fmt.Errorf("failed to save order %s: %w", m.OrderID, err)
	}

	itemQuery := `
		INSERT INTO order_items (order_item_id, order_id, product_id, variant_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, item := range order.Items {
		im := mapping.ToModelOrderItem(item)
		if _, err := tx.Exec(ctx, itemQuery, im.OrderItemID, im.OrderID, im.ProductID, im.VariantID, im.Quantity, im.UnitPrice); err != nil {
			return fmt.Errorf("failed to save item %s of order %s: %w", im.OrderItemID, m.OrderID, err)
		}
	}
	return nil
}

func (r *PgxOrderRepository) FindOrderBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.Order, error) {
	return r.findOrderForUpdate(ctx, tx, "session_id", sessionID)
}

func (r *PgxOrderRepository) FindOrderByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.Order, error) {
	return r.findOrderForUpdate(ctx, tx, "payment_intent_id", paymentIntentID)
}

// findOrderForUpdate locks the order row and loads its items. column is never user input.
func (r *PgxOrderRepository) findOrderForUpdate(ctx context.Context, tx pgx.Tx, column string, value string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1 LIMIT 1 FOR UPDATE;`
	var m models.Order
	err := tx.QueryRow(ctx, query, value).Scan(&m.OrderID, &m.SessionID, &m.PaymentIntentID, &m.CustomerEmail,
		&m.AmountTotalCents, &m.Status, &m.FulfillmentStatus, &m.FulfillmentOrderID, &m.ShippingAddress,
		&m.IsBestEffort, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock order by %s %s: %w", column, value, err)
	}

	itemQuery := `
		SELECT order_item_id, order_id, product_id, variant_id, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY order_item_id;
	`
	rows, err := tx.Query(ctx, itemQuery, m.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for order %s: %w", m.OrderID, err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.OrderItemID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}

	order, err := mapping.ToDomainOrder(m, items)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatusInTx sets the payment status. A nil paymentIntentID keeps the stored one.
func (r *PgxOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error {
	query := `
		UPDATE orders
		SET status = $1, payment_intent_id = COALESCE($2, payment_intent_id), updated_at = $3
		WHERE order_id = $4;
	`
	cmdTag, err := tx.Exec(ctx, query, string(status), paymentIntentID, now, orderID)
	if err != nil {
		return fmt.Errorf("failed to update status of order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxOrderRepository) UpdateOrderFulfillment(ctx context.Context, orderID string, status domain.FulfillmentStatus, fulfillmentOrderID *string, now time.Time) error {
	query := `
		UPDATE orders
		SET fulfillment_status = $1, fulfillment_order_id = COALESCE($2, fulfillment_order_id), updated_at = $3
		WHERE order_id = $4;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), fulfillmentOrderID, now, orderID)
	if err != nil {
		return fmt.Errorf("failed to update fulfillment of order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
