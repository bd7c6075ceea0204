package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/domain/order"
	"github.com/oneplanet-market/internal/platform/persistence"
)

// Visible orders are the ones the buyer and admins see: cash-on-delivery
// orders plus online orders that completed payment. Unpaid online orders are
// pending checkout attempts and stay hidden until the provider confirms.
const visibleOrdersPredicate = `(payment_type = 'COD' OR is_paid = TRUE)`

// OrderRepository implements the order.Repository interface for PostgreSQL
type OrderRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new order
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, account_id, items, amount, address, payment_type, payment_id, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal order address: %w", err)
	}

	_, err = r.querier.Exec(ctx, query,
		o.ID,
		o.AccountID,
		items,
		o.Amount,
		address,
		o.PaymentType,
		o.PaymentID,
		o.IsPaid,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", "account_id", o.AccountID.String(), "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `
		SELECT id, account_id, items, amount, address, payment_type, payment_id, is_paid, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	o, err := scanOrder(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound{OrderID: id}
		}
		r.logger.Error("Failed to get order", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// MarkPaid flips the order to paid and records the provider payment reference
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, payment_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, paymentID, id)
	if err != nil {
		r.logger.Error("Failed to mark order as paid", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark order as paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}

// Delete removes an order. Used to discard online orders whose payment failed.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete order", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}

// GetByAccountID retrieves the account's visible orders, newest first
func (r *OrderRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*order.Order, error) {
	query := `
		SELECT id, account_id, items, amount, address, payment_type, payment_id, is_paid, created_at, updated_at
		FROM orders
		WHERE account_id = $1 AND ` + visibleOrdersPredicate + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get orders", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ListVisible retrieves visible orders across all accounts, newest first
func (r *OrderRepository) ListVisible(ctx context.Context, limit, offset int) ([]*order.Order, error) {
	query := `
		SELECT id, account_id, items, amount, address, payment_type, payment_id, is_paid, created_at, updated_at
		FROM orders
		WHERE ` + visibleOrdersPredicate + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]*order.Order, error) {
	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var items, address []byte
	err := row.Scan(
		&o.ID,
		&o.AccountID,
		&items,
		&o.Amount,
		&address,
		&o.PaymentType,
		&o.PaymentID,
		&o.IsPaid,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order address: %w", err)
	}

	return &o, nil
}
