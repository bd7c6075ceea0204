package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyProductName = errors.New("product name cannot be empty")
	ErrInvalidPrice     = errors.New("price and offer price must be positive")
)

// Product is a catalog entry. A product without a producer is platform-owned.
// OfferPrice is the effective selling price used for order totals.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`       // Minor units
	OfferPrice  int64      `json:"offer_price"` // Minor units
	InStock     bool       `json:"in_stock"`
	ProducerID  *uuid.UUID `json:"producer_id,omitempty"`
	ImageURLs   []string   `json:"image_urls"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewProduct creates an in-stock product
func NewProduct(name, category, description string, price, offerPrice int64, producerID *uuid.UUID, imageURLs []string) (*Product, error) {
	if name == "" {
		return nil, ErrEmptyProductName
	}
	if price <= 0 || offerPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Category:    category,
		Description: description,
		Price:       price,
		OfferPrice:  offerPrice,
		InStock:     true,
		ProducerID:  producerID,
		ImageURLs:   imageURLs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
