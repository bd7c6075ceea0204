package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneplanet-market/internal/domain/wallet"
)

var withdrawalColumnNames = []string{
	"id", "account_id", "amount", "payment_method", "payment_identifier",
	"status", "remark", "created_at", "decided_at",
}

func TestWalletRepository_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	entry := wallet.NewTransaction(uuid.New(), wallet.TransactionTypeCredit, 500, "Payout for order", wallet.SourceSystem)

	query := `INSERT INTO wallet_transactions`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entry.ID, entry.AccountID, entry.Type, entry.Amount, entry.Remark, entry.Source, entry.Status, entry.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateTransaction(ctx, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(entry.ID, entry.AccountID, entry.Type, entry.Amount, entry.Remark, entry.Source, entry.Status, entry.CreatedAt).
			WillReturnError(dbErr)

		err := repo.CreateTransaction(ctx, entry)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create wallet transaction")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_GetTransactionsByAccountID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	accountID := uuid.New()
	credit := wallet.NewTransaction(accountID, wallet.TransactionTypeCredit, 1000, "Top-up", wallet.SourceAdmin)
	debit := wallet.NewTransaction(accountID, wallet.TransactionTypeDebit, 400, "Withdrawal request", wallet.SourceUser)

	query := `(?s)SELECT (.+)\s+FROM wallet_transactions\s+WHERE account_id = \$1`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "account_id", "type", "amount", "remark", "source", "status", "created_at"}).
			AddRow(debit.ID, debit.AccountID, debit.Type, debit.Amount, debit.Remark, debit.Source, debit.Status, debit.CreatedAt).
			AddRow(credit.ID, credit.AccountID, credit.Type, credit.Amount, credit.Remark, credit.Source, credit.Status, credit.CreatedAt)

		mock.ExpectQuery(query).WithArgs(accountID, 10, 0).WillReturnRows(rows)

		entries, err := repo.GetTransactionsByAccountID(ctx, accountID, 10, 0)
		assert.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, debit.ID, entries[0].ID)
		assert.Equal(t, credit.ID, entries[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "account_id", "type", "amount", "remark", "source", "status", "created_at"})
		mock.ExpectQuery(query).WithArgs(accountID, 10, 0).WillReturnRows(rows)

		entries, err := repo.GetTransactionsByAccountID(ctx, accountID, 10, 0)
		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_CreateWithdrawal(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	w := wallet.NewWithdrawal(uuid.New(), 2500, "UPI", "user@bank")

	query := `INSERT INTO withdrawals`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.ID, w.AccountID, w.Amount, w.PaymentMethod, w.PaymentIdentifier, w.Status, w.Remark, w.CreatedAt, w.DecidedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.CreateWithdrawal(ctx, w)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_LockWithdrawalForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	accountID := uuid.New()
	expected := wallet.NewWithdrawal(accountID, 2500, "UPI", "user@bank")

	query := `(?s)SELECT (.+)\s+FROM withdrawals\s+WHERE id = \$1 AND account_id = \$2\s+FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(withdrawalColumnNames).
			AddRow(expected.ID, expected.AccountID, expected.Amount, expected.PaymentMethod, expected.PaymentIdentifier,
				expected.Status, expected.Remark, expected.CreatedAt, expected.DecidedAt)
		mock.ExpectQuery(query).WithArgs(expected.ID, accountID).WillReturnRows(rows)

		w, err := repo.LockWithdrawalForUpdate(ctx, accountID, expected.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected, w)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID, accountID).WillReturnError(pgx.ErrNoRows)

		w, err := repo.LockWithdrawalForUpdate(ctx, accountID, expected.ID)
		assert.Error(t, err)
		assert.Nil(t, w)
		var notFoundErr wallet.ErrWithdrawalNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, expected.ID, notFoundErr.WithdrawalID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_UpdateWithdrawal(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	w := wallet.NewWithdrawal(uuid.New(), 2500, "UPI", "user@bank")
	now := time.Now()
	w.Status = wallet.WithdrawalStatusRejected
	w.Remark = "Withdrawal rejected – refunded"
	w.DecidedAt = &now

	query := `UPDATE withdrawals`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.Status, w.Remark, w.DecidedAt, w.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateWithdrawal(ctx, w)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.Status, w.Remark, w.DecidedAt, w.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateWithdrawal(ctx, w)
		var notFoundErr wallet.ErrWithdrawalNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
