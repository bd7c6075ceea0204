// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all relational persistence while keeping
// balance-affecting writes transaction-safe.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/platform/persistence"
)

const accountColumns = `id, name, email, password_hash, role, status, rejection_reason,
		payment_method, payment_identifier, wallet_balance, cart_items,
		reset_token, reset_token_expires, version, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing atomic operations
// across multiple repository calls
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account. A duplicate email surfaces as ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, role, status, rejection_reason,
			payment_method, payment_identifier, wallet_balance, cart_items,
			reset_token, reset_token_expires, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	cart, err := json.Marshal(acc.CartItems)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	_, err = r.querier.Exec(ctx, query,
		acc.ID,
		acc.Name,
		acc.Email,
		acc.PasswordHash,
		acc.Role,
		acc.Status,
		acc.RejectionReason,
		acc.PaymentMethod,
		acc.PaymentIdentifier,
		acc.WalletBalance,
		cart,
		acc.ResetToken,
		acc.ResetTokenExpires,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.ErrDuplicateEmail{Email: acc.Email}
		}
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByEmail retrieves an account by its email. Returns nil, nil when no
// account carries the email, so callers can branch on existence.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return acc, nil
}

// GetByResetToken retrieves the account holding an unexpired reset token
func (r *AccountRepository) GetByResetToken(ctx context.Context, token string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE reset_token = $1 AND reset_token_expires > NOW()`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by reset token", "error", err)
		return nil, fmt.Errorf("failed to get account by reset token: %w", err)
	}

	return acc, nil
}

// Update persists an account using optimistic locking on the version column.
// Returns ErrConcurrentModification when the row changed since it was read.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, email = $2, password_hash = $3, role = $4, status = $5,
			rejection_reason = $6, payment_method = $7, payment_identifier = $8,
			wallet_balance = $9, cart_items = $10, reset_token = $11,
			reset_token_expires = $12, version = $13, updated_at = $14
		WHERE id = $15 AND version = $16
	`

	cart, err := json.Marshal(acc.CartItems)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	result, err := r.querier.Exec(ctx, query,
		acc.Name,
		acc.Email,
		acc.PasswordHash,
		acc.Role,
		acc.Status,
		acc.RejectionReason,
		acc.PaymentMethod,
		acc.PaymentIdentifier,
		acc.WalletBalance,
		cart,
		acc.ResetToken,
		acc.ResetTokenExpires,
		acc.Version,
		acc.UpdatedAt,
		acc.ID,
		acc.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update account", "id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: acc.ID}
	}

	return nil
}

// List retrieves accounts of the given role, newest first
func (r *AccountRepository) List(ctx context.Context, role account.Role, limit, offset int) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE role = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.querier.Query(ctx, query, role, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list accounts", "role", string(role), "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// UpdateCart replaces the stored cart snapshot. The cart is not part of the
// per-account consistency unit, so the version is left untouched.
func (r *AccountRepository) UpdateCart(ctx context.Context, id uuid.UUID, cartItems map[string]int) error {
	query := `
		UPDATE accounts
		SET cart_items = $1, updated_at = NOW()
		WHERE id = $2
	`

	cart, err := json.Marshal(cartItems)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	result, err := r.querier.Exec(ctx, query, cart, id)
	if err != nil {
		r.logger.Error("Failed to update cart", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update cart: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its
// current state. Must be used within a transaction for balance-affecting
// operations.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	var cart []byte
	err := row.Scan(
		&acc.ID,
		&acc.Name,
		&acc.Email,
		&acc.PasswordHash,
		&acc.Role,
		&acc.Status,
		&acc.RejectionReason,
		&acc.PaymentMethod,
		&acc.PaymentIdentifier,
		&acc.WalletBalance,
		&cart,
		&acc.ResetToken,
		&acc.ResetTokenExpires,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(cart) > 0 {
		if err := json.Unmarshal(cart, &acc.CartItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
		}
	}
	if acc.CartItems == nil {
		acc.CartItems = map[string]int{}
	}

	return &acc, nil
}
