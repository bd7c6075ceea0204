package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines product persistence operations
type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, limit, offset int) ([]*Product, error)
	ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, inStock bool) error
}

// ErrProductNotFound indicates missing product
type ErrProductNotFound struct {
	ProductID uuid.UUID
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + e.ProductID.String()
}
