package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/domain/catalog"
	"github.com/oneplanet-market/internal/platform/persistence"
)

// ProductRepository implements the catalog.Repository interface for PostgreSQL
type ProductRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) catalog.Repository {
	return &ProductRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	query := `
		INSERT INTO products (id, name, category, description, price, offer_price, in_stock, producer_id, image_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	images, err := json.Marshal(product.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal image urls: %w", err)
	}

	_, err = r.querier.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.Description,
		product.Price,
		product.OfferPrice,
		product.InStock,
		product.ProducerID,
		images,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create product", "name", product.Name, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `
		SELECT id, name, category, description, price, offer_price, in_stock, producer_id, image_urls, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to get product", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// List retrieves products for the storefront, newest first
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	query := `
		SELECT id, name, category, description, price, offer_price, in_stock, producer_id, image_urls, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListByProducer retrieves all products owned by one producer
func (r *ProductRepository) ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*catalog.Product, error) {
	query := `
		SELECT id, name, category, description, price, offer_price, in_stock, producer_id, image_urls, created_at, updated_at
		FROM products
		WHERE producer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, producerID)
	if err != nil {
		r.logger.Error("Failed to list products by producer", "producer_id", producerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list products by producer: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateStock toggles the availability flag on a product
func (r *ProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, inStock bool) error {
	query := `UPDATE products SET in_stock = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.querier.Exec(ctx, query, inStock, id)
	if err != nil {
		r.logger.Error("Failed to update product stock", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update product stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return catalog.ErrProductNotFound{ProductID: id}
	}

	return nil
}

func scanProducts(rows pgx.Rows) ([]*catalog.Product, error) {
	var products []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	var images []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Description,
		&p.Price,
		&p.OfferPrice,
		&p.InStock,
		&p.ProducerID,
		&images,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.ImageURLs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal image urls: %w", err)
		}
	}

	return &p, nil
}
