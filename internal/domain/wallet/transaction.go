package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType defines the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// TransactionSource identifies who initiated a ledger entry
type TransactionSource string

const (
	SourceAdmin  TransactionSource = "admin"
	SourceSystem TransactionSource = "system"
	SourceUser   TransactionSource = "user"
)

// TransactionStatus defines the terminal state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is an immutable wallet ledger entry. Entries are append-only:
// for every account, the sum of credits minus the sum of debits equals the
// wallet balance at all times.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	AccountID uuid.UUID         `json:"account_id"`
	Type      TransactionType   `json:"type"`
	Amount    int64             `json:"amount"` // Stored in minor units, always positive
	Remark    string            `json:"remark"`
	Source    TransactionSource `json:"source"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewTransaction builds a success ledger entry for the given account
func NewTransaction(accountID uuid.UUID, txType TransactionType, amount int64, remark string, source TransactionSource) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Remark:    remark,
		Source:    source,
		Status:    TransactionStatusSuccess,
		CreatedAt: time.Now(),
	}
}
