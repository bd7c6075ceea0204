package wallet

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus is the lifecycle state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a request to pay out wallet balance. The payment method and
// identifier are snapshotted at request time so later profile edits do not
// retroactively alter a pending request. A withdrawal is pending until an
// admin decision; approved and rejected are terminal.
type Withdrawal struct {
	ID                uuid.UUID        `json:"id"`
	AccountID         uuid.UUID        `json:"account_id"`
	Amount            int64            `json:"amount"`
	PaymentMethod     string           `json:"payment_method"`
	PaymentIdentifier string           `json:"payment_identifier"`
	Status            WithdrawalStatus `json:"status"`
	Remark            string           `json:"remark,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	DecidedAt         *time.Time       `json:"decided_at,omitempty"`
}

// NewWithdrawal builds a pending withdrawal carrying the account's current payout details
func NewWithdrawal(accountID uuid.UUID, amount int64, paymentMethod, paymentIdentifier string) *Withdrawal {
	return &Withdrawal{
		ID:                uuid.New(),
		AccountID:         accountID,
		Amount:            amount,
		PaymentMethod:     paymentMethod,
		PaymentIdentifier: paymentIdentifier,
		Status:            WithdrawalStatusPending,
		CreatedAt:         time.Now(),
	}
}

// IsPending reports whether the withdrawal still awaits a decision
func (w *Withdrawal) IsPending() bool {
	return w.Status == WithdrawalStatusPending
}

// Decide moves the withdrawal to its terminal state. Callers must check
// IsPending first; Decide does not re-validate the transition.
func (w *Withdrawal) Decide(status WithdrawalStatus, remark string) {
	now := time.Now()
	w.Status = status
	w.Remark = remark
	w.DecidedAt = &now
}
