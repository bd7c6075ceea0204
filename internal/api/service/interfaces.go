package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/catalog"
	"github.com/oneplanet-market/internal/domain/content"
	"github.com/oneplanet-market/internal/domain/ecojourney"
	"github.com/oneplanet-market/internal/domain/order"
	"github.com/oneplanet-market/internal/domain/wallet"
)

// TxRunner runs a function inside a single database transaction. Implemented
// by *persistence.PostgresDB; tests substitute a pass-through runner.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// AccountService defines the interface for account and session operations
type AccountService interface {
	// Register creates an account and returns it with a session token.
	// Returns ErrDuplicateEmail if the email is taken.
	Register(ctx context.Context, name, email, password string, role account.Role) (*account.Account, string, error)

	// Login authenticates by email and password and returns a session token.
	// Returns ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, email, password string) (*account.Account, string, error)

	// GetByID retrieves an account.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// UpdatePaymentDetails saves the account's payout destination
	UpdatePaymentDetails(ctx context.Context, id uuid.UUID, method, identifier string) (*account.Account, error)

	// SaveCart replaces the account's stored cart snapshot
	SaveCart(ctx context.Context, id uuid.UUID, items map[string]int) error

	// GetCart returns the account's stored cart snapshot
	GetCart(ctx context.Context, id uuid.UUID) (map[string]int, error)

	// RequestPasswordReset issues a reset token and emails it to the account.
	// Unknown emails return no error so the endpoint doesn't leak existence.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes an unexpired reset token and sets a new password
	ResetPassword(ctx context.Context, token, newPassword string) error

	// List retrieves accounts by role for admin views
	List(ctx context.Context, role account.Role, page, perPage int) ([]*account.Account, error)

	// DecideAccount resolves a pending account: approval activates it,
	// rejection closes it. Returns ErrDecisionNotPending if the account has
	// already been decided.
	DecideAccount(ctx context.Context, id uuid.UUID, approve bool) (*account.Account, error)
}

// WalletService defines the interface for ledger operations. Every balance
// mutation commits atomically with its ledger entry.
type WalletService interface {
	// Credit adds funds to a wallet and appends the matching ledger entry
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, remark string, source wallet.TransactionSource) (*wallet.Transaction, error)

	// GetStatement returns the account's ledger entries with the current balance
	GetStatement(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*wallet.Transaction, int64, int64, error)

	// RequestWithdrawal debits the wallet and opens a pending withdrawal
	// carrying a snapshot of the account's payout details
	RequestWithdrawal(ctx context.Context, accountID uuid.UUID, amount int64) (*wallet.Withdrawal, error)

	// GetWithdrawals returns the account's withdrawal requests
	GetWithdrawals(ctx context.Context, accountID uuid.UUID) ([]*wallet.Withdrawal, error)

	// ListPendingWithdrawals returns open requests across accounts for admin review
	ListPendingWithdrawals(ctx context.Context, page, perPage int) ([]*wallet.Withdrawal, error)

	// DecideWithdrawal resolves a pending withdrawal. Rejection refunds the
	// held amount; approval only records the decision.
	// Returns ErrWithdrawalNotPending if the request was already decided.
	DecideWithdrawal(ctx context.Context, accountID, withdrawalID uuid.UUID, approve bool, remark string) (*wallet.Withdrawal, error)
}

// CatalogService defines the interface for product operations
type CatalogService interface {
	// AddProduct creates a catalog entry, owned by producerID when set
	AddProduct(ctx context.Context, name, category, description string, price, offerPrice int64, producerID *uuid.UUID, imageURLs []string) (*catalog.Product, error)

	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)

	// ListProducts returns the storefront catalog
	ListProducts(ctx context.Context, page, perPage int) ([]*catalog.Product, error)

	// ListByProducer returns one producer's products
	ListByProducer(ctx context.Context, producerID uuid.UUID) ([]*catalog.Product, error)

	// SetStock toggles a product's availability
	SetStock(ctx context.Context, id uuid.UUID, inStock bool) error
}

// CheckoutItem is one requested order line before product resolution
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// OnlineCheckout is the result of starting a hosted payment session
type OnlineCheckout struct {
	Order      *order.Order
	SessionURL string
}

// OrderService defines the interface for checkout and order lifecycle
// operations. Completion side effects (journey progression, producer payouts,
// confirmation email) run exactly once per order, when it becomes visible.
type OrderService interface {
	// PlaceCODOrder creates a cash-on-delivery order, complete immediately
	PlaceCODOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address) (*order.Order, *ecojourney.OrderImpact, error)

	// PlaceOnlineOrder creates an unpaid order and opens a hosted checkout
	// session; the order completes when the provider webhook confirms payment
	PlaceOnlineOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address, successURL, cancelURL string) (*OnlineCheckout, error)

	// PlaceCardOrder charges a tokenized card synchronously and creates a
	// paid, complete order
	PlaceCardOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address, sourceID string) (*order.Order, *ecojourney.OrderImpact, error)

	// HandlePaymentWebhook verifies and applies a provider callback: marking
	// the order paid and completing it, or deleting it on payment failure
	HandlePaymentWebhook(ctx context.Context, payload []byte, signatureHeader string) error

	// GetMyOrders returns the account's visible orders
	GetMyOrders(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*order.Order, error)

	// ListOrders returns all visible orders for admin views
	ListOrders(ctx context.Context, page, perPage int) ([]*order.Order, error)
}

// EcoJourneyService defines the interface for sustainability progression
type EcoJourneyService interface {
	// GetJourney returns the account's journey, creating it on first access
	GetJourney(ctx context.Context, accountID uuid.UUID) (*ecojourney.Journey, error)

	// RecordCompletedOrder applies a completed order to the journey with
	// optimistic retry, returning the incremental impact
	RecordCompletedOrder(ctx context.Context, o *order.Order) (*ecojourney.OrderImpact, error)

	// UpdateGoals merges the non-nil goal fields
	UpdateGoals(ctx context.Context, accountID uuid.UUID, monthlySpending *int64, carbonReduction *float64, localSupport *int) (*ecojourney.Journey, error)

	// UpdatePreferences replaces the journey preferences
	UpdatePreferences(ctx context.Context, accountID uuid.UUID, prefs ecojourney.Preferences) (*ecojourney.Journey, error)

	// Leaderboard returns public journeys ranked by the metric
	Leaderboard(ctx context.Context, metric ecojourney.LeaderboardMetric, limit int) ([]*ecojourney.Journey, error)

	// AchievementProgress reports percentage progress toward every achievement
	AchievementProgress(ctx context.Context, accountID uuid.UUID) ([]ecojourney.Progress, error)
}

// ContentService defines the interface for community content: blogs, the
// newsletter, and producer applications
type ContentService interface {
	// CreateBlog submits a blog post for moderation
	CreateBlog(ctx context.Context, authorID uuid.UUID, title, body, coverURL string) (*content.Blog, error)

	// GetBlog retrieves a blog post
	GetBlog(ctx context.Context, id uuid.UUID) (*content.Blog, error)

	// ListBlogs returns blog posts in the given moderation state
	ListBlogs(ctx context.Context, status content.ModerationStatus, page, perPage int) ([]*content.Blog, error)

	// ModerateBlog records an admin decision on a blog post
	ModerateBlog(ctx context.Context, id uuid.UUID, approve bool, remark string) error

	// Subscribe adds a newsletter subscription.
	// Returns ErrAlreadySubscribed for duplicate emails.
	Subscribe(ctx context.Context, email string) error

	// Unsubscribe removes a newsletter subscription
	Unsubscribe(ctx context.Context, email string) error

	// ApplyAsProducer submits an application to sell on the platform
	ApplyAsProducer(ctx context.Context, accountID uuid.UUID, farmName, description, location string) (*content.ProducerApplication, error)

	// ListApplications returns applications in the given state for admin review
	ListApplications(ctx context.Context, status content.ModerationStatus, page, perPage int) ([]*content.ProducerApplication, error)

	// DecideApplication resolves a pending application. Approval promotes the
	// account to the producer role.
	DecideApplication(ctx context.Context, applicationID uuid.UUID, approve bool, reason string) (*content.ProducerApplication, error)
}
