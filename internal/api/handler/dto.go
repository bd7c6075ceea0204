package handler

import (
	"time"

	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/catalog"
	"github.com/oneplanet-market/internal/domain/order"
	"github.com/oneplanet-market/internal/domain/wallet"
)

// RegisterRequest represents a request to create a new account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=user seller"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdatePaymentDetailsRequest sets the account's payout destination
type UpdatePaymentDetailsRequest struct {
	PaymentMethod     string `json:"payment_method" binding:"required"`
	PaymentIdentifier string `json:"payment_identifier" binding:"required"`
}

// SaveCartRequest replaces the stored cart snapshot
type SaveCartRequest struct {
	Items map[string]int `json:"items" binding:"required"`
}

// PasswordResetRequest asks for a reset token to be emailed
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest consumes a reset token
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// CreditWalletRequest represents an admin crediting a wallet
type CreditWalletRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Remark    string `json:"remark" binding:"required"`
}

// WithdrawalRequest opens a withdrawal for the authenticated account
type WithdrawalRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// DecideWithdrawalRequest resolves a pending withdrawal
type DecideWithdrawalRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Decision  string `json:"decision" binding:"required,oneof=approve reject"`
	Remark    string `json:"remark"`
}

// CreateProductRequest represents a request to add a catalog entry
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	OfferPrice  int64    `json:"offer_price" binding:"required,gt=0"`
	ImageURLs   []string `json:"image_urls"`
}

// SetStockRequest toggles product availability
type SetStockRequest struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

// OrderItemRequest is one requested checkout line
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddressRequest is the delivery address for an order
type AddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

// PlaceOrderRequest represents a checkout. Online orders need the redirect
// URLs for the hosted session; Square orders need the tokenized card source.
type PlaceOrderRequest struct {
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address     AddressRequest     `json:"address" binding:"required"`
	PaymentType string             `json:"payment_type" binding:"required,oneof=COD Online Square"`
	SuccessURL  string             `json:"success_url" binding:"omitempty,url"`
	CancelURL   string             `json:"cancel_url" binding:"omitempty,url"`
	SourceID    string             `json:"source_id"`
}

// UpdateGoalsRequest merges the non-nil fields into the journey goals
type UpdateGoalsRequest struct {
	MonthlySpending *int64   `json:"monthly_spending" binding:"omitempty,gte=0"`
	CarbonReduction *float64 `json:"carbon_reduction" binding:"omitempty,gte=0"`
	LocalSupport    *int     `json:"local_support" binding:"omitempty,gte=0"`
}

// UpdatePreferencesRequest replaces the journey preferences
type UpdatePreferencesRequest struct {
	Categories    []string `json:"categories"`
	Notifications bool     `json:"notifications"`
	PublicProfile bool     `json:"public_profile"`
}

// CreateBlogRequest submits a blog post for moderation
type CreateBlogRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	CoverURL string `json:"cover_url" binding:"omitempty,url"`
}

// ModerationRequest records an admin decision on moderated content
type ModerationRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Remark   string `json:"remark"`
}

// SubscribeRequest adds a newsletter subscription
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ApplyProducerRequest submits a producer application
type ApplyProducerRequest struct {
	FarmName    string `json:"farm_name" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Role              string         `json:"role"`
	Status            string         `json:"status"`
	PaymentMethod     string         `json:"payment_method,omitempty"`
	PaymentIdentifier string         `json:"payment_identifier,omitempty"`
	WalletBalance     int64          `json:"wallet_balance"`
	CartItems         map[string]int `json:"cart_items"`
	CreatedAt         string         `json:"created_at"`
}

// AuthResponse carries a session token alongside the account
type AuthResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// TransactionResponse represents a wallet ledger entry in API responses
type TransactionResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Remark    string `json:"remark"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// StatementResponse is a page of ledger entries with the current balance
type StatementResponse struct {
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// WithdrawalResponse represents a withdrawal request in API responses
type WithdrawalResponse struct {
	ID                string `json:"id"`
	AccountID         string `json:"account_id"`
	Amount            int64  `json:"amount"`
	PaymentMethod     string `json:"payment_method"`
	PaymentIdentifier string `json:"payment_identifier"`
	Status            string `json:"status"`
	Remark            string `json:"remark,omitempty"`
	CreatedAt         string `json:"created_at"`
	DecidedAt         string `json:"decided_at,omitempty"`
}

// ProductResponse represents a catalog entry in API responses
type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	OfferPrice  int64    `json:"offer_price"`
	InStock     bool     `json:"in_stock"`
	ProducerID  string   `json:"producer_id,omitempty"`
	ImageURLs   []string `json:"image_urls"`
	CreatedAt   string   `json:"created_at"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          string              `json:"id"`
	AccountID   string              `json:"account_id"`
	Items       []OrderItemResponse `json:"items"`
	Amount      int64               `json:"amount"`
	Address     order.Address       `json:"address"`
	PaymentType string              `json:"payment_type"`
	PaymentID   string              `json:"payment_id,omitempty"`
	IsPaid      bool                `json:"is_paid"`
	CreatedAt   string              `json:"created_at"`
}

// CheckoutResponse is the result of placing an order. SessionURL is set for
// hosted checkouts; Impact for orders that completed immediately.
type CheckoutResponse struct {
	Order      OrderResponse `json:"order"`
	SessionURL string        `json:"session_url,omitempty"`
	Impact     interface{}   `json:"impact,omitempty"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	cart := acc.CartItems
	if cart == nil {
		cart = map[string]int{}
	}
	return AccountResponse{
		ID:                acc.ID.String(),
		Name:              acc.Name,
		Email:             acc.Email,
		Role:              string(acc.Role),
		Status:            string(acc.Status),
		PaymentMethod:     acc.PaymentMethod,
		PaymentIdentifier: acc.PaymentIdentifier,
		WalletBalance:     acc.WalletBalance,
		CartItems:         cart,
		CreatedAt:         acc.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(tx *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID.String(),
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Remark:    tx.Remark,
		Source:    string(tx.Source),
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

func mapWithdrawalToResponse(w *wallet.Withdrawal) WithdrawalResponse {
	resp := WithdrawalResponse{
		ID:                w.ID.String(),
		AccountID:         w.AccountID.String(),
		Amount:            w.Amount,
		PaymentMethod:     w.PaymentMethod,
		PaymentIdentifier: w.PaymentIdentifier,
		Status:            string(w.Status),
		Remark:            w.Remark,
		CreatedAt:         w.CreatedAt.Format(time.RFC3339),
	}
	if w.DecidedAt != nil {
		resp.DecidedAt = w.DecidedAt.Format(time.RFC3339)
	}
	return resp
}

func mapProductToResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		OfferPrice:  p.OfferPrice,
		InStock:     p.InStock,
		ImageURLs:   p.ImageURLs,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.ProducerID != nil {
		resp.ProducerID = p.ProducerID.String()
	}
	return resp
}

func mapOrderToResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return OrderResponse{
		ID:          o.ID.String(),
		AccountID:   o.AccountID.String(),
		Items:       items,
		Amount:      o.Amount,
		Address:     o.Address,
		PaymentType: string(o.PaymentType),
		PaymentID:   o.PaymentID,
		IsPaid:      o.IsPaid,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
