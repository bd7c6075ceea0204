package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages ledger entry and withdrawal persistence. Writes are only
// ever issued inside the same database transaction as the paired account
// balance mutation; use WithTx to bind the repository to that transaction.
type Repository interface {
	CreateTransaction(ctx context.Context, entry *Transaction) error
	GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)

	CreateWithdrawal(ctx context.Context, withdrawal *Withdrawal) error
	GetWithdrawalsByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Withdrawal, error)
	ListWithdrawalsByStatus(ctx context.Context, status WithdrawalStatus, limit, offset int) ([]*Withdrawal, error)

	// LockWithdrawalForUpdate locks the withdrawal row so that a decision
	// cannot race with another decision on the same request
	LockWithdrawalForUpdate(ctx context.Context, accountID, withdrawalID uuid.UUID) (*Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, withdrawal *Withdrawal) error

	WithTx(tx pgx.Tx) Repository
}

// ErrWithdrawalNotFound indicates missing withdrawal request
type ErrWithdrawalNotFound struct {
	WithdrawalID uuid.UUID
}

func (e ErrWithdrawalNotFound) Error() string {
	return "withdrawal not found: " + e.WithdrawalID.String()
}

// ErrWithdrawalNotPending indicates a decision on an already-decided withdrawal
type ErrWithdrawalNotPending struct {
	WithdrawalID uuid.UUID
	Status       WithdrawalStatus
}

func (e ErrWithdrawalNotPending) Error() string {
	return "withdrawal " + e.WithdrawalID.String() + " is not pending: " + string(e.Status)
}
