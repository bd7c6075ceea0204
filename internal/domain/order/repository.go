package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines order persistence operations
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByAccountID returns the account's visible orders (COD or paid),
	// newest first
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Order, error)
	// ListVisible returns all COD-or-paid orders across accounts, newest first
	ListVisible(ctx context.Context, limit, offset int) ([]*Order, error)
}

// ErrOrderNotFound indicates missing order
type ErrOrderNotFound struct {
	OrderID uuid.UUID
}

func (e ErrOrderNotFound) Error() string {
	return "order not found: " + e.OrderID.String()
}
