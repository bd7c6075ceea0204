package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrder     = errors.New("order must contain at least one item")
	ErrMissingAddress = errors.New("delivery address is required")
)

// TaxRatePercent is the flat surcharge applied to every order subtotal.
// The tax is computed once over the whole subtotal and floored; per-item
// price inflation is never used for the stored amount.
const TaxRatePercent = 2

// PaymentType defines how an order is paid
type PaymentType string

const (
	PaymentTypeCOD    PaymentType = "COD"
	PaymentTypeOnline PaymentType = "Online"
	PaymentTypeSquare PaymentType = "Square"
)

// Item is a line item referencing a product with the quantity snapshot taken
// at checkout. UnitPrice is the product offer price at order time.
type Item struct {
	ProductID  uuid.UUID  `json:"product_id"`
	ProducerID *uuid.UUID `json:"producer_id,omitempty"`
	Name       string     `json:"name"`
	UnitPrice  int64      `json:"unit_price"` // Minor units
	Quantity   int        `json:"quantity"`
}

// Address is the delivery address snapshot stored with the order
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

// Order is one checkout attempt. Online orders start unpaid and are either
// marked paid by the payment provider callback or deleted on payment failure.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"account_id"`
	Items       []Item      `json:"items"`
	Amount      int64       `json:"amount"` // Subtotal plus tax, minor units
	Address     Address     `json:"address"`
	PaymentType PaymentType `json:"payment_type"`
	PaymentID   string      `json:"payment_id,omitempty"` // Provider-issued payment reference
	IsPaid      bool        `json:"is_paid"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Subtotal sums unit price times quantity across all items
func Subtotal(items []Item) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return subtotal
}

// TotalAmount applies the flat tax surcharge to the item subtotal.
// Integer division floors the surcharge.
func TotalAmount(items []Item) int64 {
	subtotal := Subtotal(items)
	return subtotal + subtotal*TaxRatePercent/100
}

// TotalQuantity sums item quantities across the order
func TotalQuantity(items []Item) int {
	var total int
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// NewOrder creates an order for the given resolved items and address.
// COD orders are payable on delivery and never carry the paid flag.
func NewOrder(accountID uuid.UUID, items []Item, address Address, paymentType PaymentType) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if address.Street == "" || address.City == "" {
		return nil, ErrMissingAddress
	}

	now := time.Now()
	return &Order{
		ID:          uuid.New(),
		AccountID:   accountID,
		Items:       items,
		Amount:      TotalAmount(items),
		Address:     address,
		PaymentType: paymentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
