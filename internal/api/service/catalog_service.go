package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/domain/catalog"
)

// CatalogServiceImpl implements the CatalogService interface
type CatalogServiceImpl struct {
	productRepo catalog.Repository
	logger      *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(logger *slog.Logger, productRepo catalog.Repository) CatalogService {
	return &CatalogServiceImpl{
		productRepo: productRepo,
		logger:      logger,
	}
}

// AddProduct creates a catalog entry, owned by producerID when set
func (s *CatalogServiceImpl) AddProduct(ctx context.Context, name, category, description string, price, offerPrice int64, producerID *uuid.UUID, imageURLs []string) (*catalog.Product, error) {
	product, err := catalog.NewProduct(name, category, description, price, offerPrice, producerID, imageURLs)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product added", "product_id", product.ID.String(), "name", product.Name)
	return product, nil
}

// GetProduct retrieves a product by ID, returns ErrProductNotFound if not found
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts returns the storefront catalog
func (s *CatalogServiceImpl) ListProducts(ctx context.Context, page, perPage int) ([]*catalog.Product, error) {
	offset := (page - 1) * perPage
	return s.productRepo.List(ctx, perPage, offset)
}

// ListByProducer returns one producer's products
func (s *CatalogServiceImpl) ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*catalog.Product, error) {
	return s.productRepo.ListByProducer(ctx, producerID)
}

// SetStock toggles a product's availability
func (s *CatalogServiceImpl) SetStock(ctx context.Context, id uuid.UUID, inStock bool) error {
	return s.productRepo.UpdateStock(ctx, id, inStock)
}
