package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientBalance   = errors.New("insufficient wallet balance")
	ErrEmptyName             = errors.New("name cannot be empty")
	ErrInvalidEmail          = errors.New("a valid email is required")
	ErrPaymentDetailsMissing = errors.New("payment method or identifier not set")
)

// Role defines what an account is allowed to do
type Role string

const (
	RoleUser     Role = "user"
	RoleSeller   Role = "seller"
	RoleProducer Role = "producer"
	RoleAdmin    Role = "admin"
)

// Status is the verification state of an account
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Account represents a marketplace user (buyer, producer or admin).
// WalletBalance is stored in minor currency units and must never go negative;
// every balance mutation is paired with a ledger transaction.
type Account struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	PasswordHash      string         `json:"-"`
	Role              Role           `json:"role"`
	Status            Status         `json:"status"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`
	PaymentMethod     string         `json:"payment_method,omitempty"`     // UPI / Bank / etc
	PaymentIdentifier string         `json:"payment_identifier,omitempty"` // UPI ID / account number
	WalletBalance     int64          `json:"wallet_balance"`
	CartItems         map[string]int `json:"cart_items"` // productID -> quantity
	ResetToken        string         `json:"-"`
	ResetTokenExpires *time.Time     `json:"-"`
	Version           int            `json:"version"` // For optimistic locking
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewAccount creates a new account with the given identity and hashed password
func NewAccount(name, email, passwordHash string, role Role) (*Account, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if email == "" {
		return nil, ErrInvalidEmail
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusPending,
		CartItems:    map[string]int{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Credit adds the specified amount to the wallet balance
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.WalletBalance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the specified amount from the wallet balance
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if a.WalletBalance < amount {
		return ErrInsufficientBalance
	}

	a.WalletBalance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks whether the wallet holds at least the given amount
func (a *Account) CanDebit(amount int64) bool {
	return a.WalletBalance >= amount
}

// HasPaymentDetails reports whether a payout destination has been saved
func (a *Account) HasPaymentDetails() bool {
	return a.PaymentMethod != "" && a.PaymentIdentifier != ""
}
