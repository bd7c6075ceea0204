package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/domain/wallet"
	"github.com/oneplanet-market/internal/platform/persistence"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so ledger writes commit
// atomically with the paired balance update
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateTransaction appends an immutable ledger entry
func (r *WalletRepository) CreateTransaction(ctx context.Context, entry *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, account_id, type, amount, remark, source, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.Type,
		entry.Amount,
		entry.Remark,
		entry.Source,
		entry.Status,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet transaction", "account_id", entry.AccountID.String(), "error", err)
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	return nil
}

// GetTransactionsByAccountID retrieves the account's ledger entries, newest first
func (r *WalletRepository) GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*wallet.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, remark, source, status, created_at
		FROM wallet_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get wallet transactions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet transactions: %w", err)
	}
	defer rows.Close()

	var entries []*wallet.Transaction
	for rows.Next() {
		var entry wallet.Transaction
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Type,
			&entry.Amount,
			&entry.Remark,
			&entry.Source,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over wallet transactions: %w", err)
	}

	return entries, nil
}

// CountTransactionsByAccountID returns the total number of ledger entries for pagination
func (r *WalletRepository) CountTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM wallet_transactions WHERE account_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count wallet transactions", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}

	return count, nil
}

// CreateWithdrawal stores a new pending withdrawal request
func (r *WalletRepository) CreateWithdrawal(ctx context.Context, withdrawal *wallet.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, account_id, amount, payment_method, payment_identifier, status, remark, created_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		withdrawal.ID,
		withdrawal.AccountID,
		withdrawal.Amount,
		withdrawal.PaymentMethod,
		withdrawal.PaymentIdentifier,
		withdrawal.Status,
		withdrawal.Remark,
		withdrawal.CreatedAt,
		withdrawal.DecidedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create withdrawal", "account_id", withdrawal.AccountID.String(), "error", err)
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	return nil
}

// GetWithdrawalsByAccountID retrieves the account's withdrawal requests, newest first
func (r *WalletRepository) GetWithdrawalsByAccountID(ctx context.Context, accountID uuid.UUID) ([]*wallet.Withdrawal, error) {
	query := `
		SELECT id, account_id, amount, payment_method, payment_identifier, status, remark, created_at, decided_at
		FROM withdrawals
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to get withdrawals", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get withdrawals: %w", err)
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// ListWithdrawalsByStatus retrieves withdrawals across all accounts in the
// given state, oldest first so admins review requests in arrival order
func (r *WalletRepository) ListWithdrawalsByStatus(ctx context.Context, status wallet.WithdrawalStatus, limit, offset int) ([]*wallet.Withdrawal, error) {
	query := `
		SELECT id, account_id, amount, payment_method, payment_identifier, status, remark, created_at, decided_at
		FROM withdrawals
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list withdrawals", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// LockWithdrawalForUpdate obtains a pessimistic lock on the withdrawal row.
// Must be used within a transaction.
func (r *WalletRepository) LockWithdrawalForUpdate(ctx context.Context, accountID, withdrawalID uuid.UUID) (*wallet.Withdrawal, error) {
	query := `
		SELECT id, account_id, amount, payment_method, payment_identifier, status, remark, created_at, decided_at
		FROM withdrawals
		WHERE id = $1 AND account_id = $2
		FOR UPDATE
	`

	var w wallet.Withdrawal
	err := r.querier.QueryRow(ctx, query, withdrawalID, accountID).Scan(
		&w.ID,
		&w.AccountID,
		&w.Amount,
		&w.PaymentMethod,
		&w.PaymentIdentifier,
		&w.Status,
		&w.Remark,
		&w.CreatedAt,
		&w.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWithdrawalNotFound{WithdrawalID: withdrawalID}
		}
		r.logger.Error("Failed to lock withdrawal for update", "withdrawal_id", withdrawalID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock withdrawal for update: %w", err)
	}

	return &w, nil
}

// UpdateWithdrawal persists the decision on a withdrawal request
func (r *WalletRepository) UpdateWithdrawal(ctx context.Context, withdrawal *wallet.Withdrawal) error {
	query := `
		UPDATE withdrawals
		SET status = $1, remark = $2, decided_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query,
		withdrawal.Status,
		withdrawal.Remark,
		withdrawal.DecidedAt,
		withdrawal.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update withdrawal", "withdrawal_id", withdrawal.ID.String(), "error", err)
		return fmt.Errorf("failed to update withdrawal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrWithdrawalNotFound{WithdrawalID: withdrawal.ID}
	}

	return nil
}

func scanWithdrawals(rows pgx.Rows) ([]*wallet.Withdrawal, error) {
	var withdrawals []*wallet.Withdrawal
	for rows.Next() {
		var w wallet.Withdrawal
		err := rows.Scan(
			&w.ID,
			&w.AccountID,
			&w.Amount,
			&w.PaymentMethod,
			&w.PaymentIdentifier,
			&w.Status,
			&w.Remark,
			&w.CreatedAt,
			&w.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over withdrawals: %w", err)
	}

	return withdrawals, nil
}
