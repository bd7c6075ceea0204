package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		name := "Jane Doe"
		email := "jane@example.com"
		hash := "$2a$10$abcdefghijklmnopqrstuv"

		beforeCreation := time.Now()
		acc, err := NewAccount(name, email, hash, RoleUser)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.NotEqual(t, uuid.Nil, acc.ID, "Account ID should not be nil")
		assert.Equal(t, name, acc.Name)
		assert.Equal(t, email, acc.Email)
		assert.Equal(t, hash, acc.PasswordHash)
		assert.Equal(t, RoleUser, acc.Role)
		assert.Equal(t, StatusPending, acc.Status)
		assert.Zero(t, acc.WalletBalance, "New wallets start empty")
		assert.NotNil(t, acc.CartItems)
		assert.Equal(t, 1, acc.Version, "Initial version should be 1")
		assert.WithinDuration(t, beforeCreation, acc.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
	})

	t.Run("EmptyName", func(t *testing.T) {
		acc, err := NewAccount("", "jane@example.com", "hash", RoleUser)

		assert.Nil(t, acc)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("EmptyEmail", func(t *testing.T) {
		acc, err := NewAccount("Jane Doe", "", "hash", RoleUser)

		assert.Nil(t, acc)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestAccount_Credit(t *testing.T) {
	t.Run("SuccessfulCredit", func(t *testing.T) {
		acc := &Account{WalletBalance: 5000, Version: 1}

		err := acc.Credit(2000)

		require.NoError(t, err)
		assert.Equal(t, int64(7000), acc.WalletBalance)
		assert.Equal(t, 2, acc.Version)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		acc := &Account{WalletBalance: 5000, Version: 1}

		assert.ErrorIs(t, acc.Credit(0), ErrInvalidAmount)
		assert.ErrorIs(t, acc.Credit(-100), ErrInvalidAmount)
		assert.Equal(t, int64(5000), acc.WalletBalance, "Rejected credits leave the balance untouched")
		assert.Equal(t, 1, acc.Version)
	})
}

func TestAccount_Debit(t *testing.T) {
	t.Run("SuccessfulDebit", func(t *testing.T) {
		acc := &Account{WalletBalance: 5000, Version: 3}

		err := acc.Debit(3000)

		require.NoError(t, err)
		assert.Equal(t, int64(2000), acc.WalletBalance)
		assert.Equal(t, 4, acc.Version)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		acc := &Account{WalletBalance: 1000, Version: 1}

		err := acc.Debit(1001)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, int64(1000), acc.WalletBalance, "Failed debits leave the balance untouched")
		assert.Equal(t, 1, acc.Version)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		acc := &Account{WalletBalance: 1000, Version: 1}

		assert.ErrorIs(t, acc.Debit(0), ErrInvalidAmount)
		assert.ErrorIs(t, acc.Debit(-50), ErrInvalidAmount)
	})

	t.Run("ExactBalance", func(t *testing.T) {
		acc := &Account{WalletBalance: 1000, Version: 1}

		require.NoError(t, acc.Debit(1000))
		assert.Zero(t, acc.WalletBalance, "A wallet may be drained to exactly zero")
	})
}

func TestAccount_CanDebit(t *testing.T) {
	acc := &Account{WalletBalance: 1000}

	assert.True(t, acc.CanDebit(500))
	assert.True(t, acc.CanDebit(1000))
	assert.False(t, acc.CanDebit(1001))
}

func TestAccount_HasPaymentDetails(t *testing.T) {
	assert.False(t, (&Account{}).HasPaymentDetails())
	assert.False(t, (&Account{PaymentMethod: "UPI"}).HasPaymentDetails())
	assert.False(t, (&Account{PaymentIdentifier: "jane@upi"}).HasPaymentDetails())
	assert.True(t, (&Account{PaymentMethod: "UPI", PaymentIdentifier: "jane@upi"}).HasPaymentDetails())
}
