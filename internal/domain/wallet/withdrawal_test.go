package wallet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	accountID := uuid.New()

	entry := NewTransaction(accountID, TransactionTypeCredit, 2500, "Payout for order abc", SourceSystem)

	require.NotNil(t, entry)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, accountID, entry.AccountID)
	assert.Equal(t, TransactionTypeCredit, entry.Type)
	assert.Equal(t, int64(2500), entry.Amount)
	assert.Equal(t, "Payout for order abc", entry.Remark)
	assert.Equal(t, SourceSystem, entry.Source)
	assert.Equal(t, TransactionStatusSuccess, entry.Status)
}

func TestNewWithdrawal(t *testing.T) {
	accountID := uuid.New()

	w := NewWithdrawal(accountID, 5000, "UPI", "jane@upi")

	require.NotNil(t, w)
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, accountID, w.AccountID)
	assert.Equal(t, int64(5000), w.Amount)
	assert.Equal(t, "UPI", w.PaymentMethod)
	assert.Equal(t, "jane@upi", w.PaymentIdentifier)
	assert.Equal(t, WithdrawalStatusPending, w.Status)
	assert.Nil(t, w.DecidedAt)
	assert.True(t, w.IsPending())
}

func TestWithdrawal_Decide(t *testing.T) {
	t.Run("Approval", func(t *testing.T) {
		w := NewWithdrawal(uuid.New(), 5000, "UPI", "jane@upi")
		beforeDecision := time.Now()

		w.Decide(WithdrawalStatusApproved, "paid via bank transfer")

		assert.Equal(t, WithdrawalStatusApproved, w.Status)
		assert.Equal(t, "paid via bank transfer", w.Remark)
		require.NotNil(t, w.DecidedAt)
		assert.WithinDuration(t, beforeDecision, *w.DecidedAt, time.Second)
		assert.False(t, w.IsPending())
	})

	t.Run("Rejection", func(t *testing.T) {
		w := NewWithdrawal(uuid.New(), 5000, "UPI", "jane@upi")

		w.Decide(WithdrawalStatusRejected, "payout details invalid")

		assert.Equal(t, WithdrawalStatusRejected, w.Status)
		assert.False(t, w.IsPending())
	})
}
