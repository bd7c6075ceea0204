package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/wallet"
)

// RejectionRefundRemark is the ledger remark on the credit that returns a
// rejected withdrawal's amount to the wallet
const RejectionRefundRemark = "Withdrawal rejected – refunded"

// WalletServiceImpl implements the WalletService interface. Every balance
// mutation locks the account row, applies the change, and appends the ledger
// entry inside one database transaction, so the invariant balance = credits −
// debits can never be observed broken.
type WalletServiceImpl struct {
	accountRepo account.Repository
	walletRepo  wallet.Repository
	db          TxRunner
	walletCfg   *config.WalletConfig
	logger      *slog.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	logger *slog.Logger,
	walletCfg *config.WalletConfig,
	db TxRunner,
	accountRepo account.Repository,
	walletRepo wallet.Repository,
) WalletService {
	return &WalletServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		db:          db,
		walletCfg:   walletCfg,
		logger:      logger,
	}
}

// Credit adds funds to a wallet and appends the matching ledger entry
func (s *WalletServiceImpl) Credit(ctx context.Context, accountID uuid.UUID, amount int64, remark string, source wallet.TransactionSource) (*wallet.Transaction, error) {
	var entry *wallet.Transaction

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		acc, err := accountRepo.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if err := acc.Credit(amount); err != nil {
			return err
		}
		if err := accountRepo.Update(ctx, acc); err != nil {
			return err
		}

		entry = wallet.NewTransaction(accountID, wallet.TransactionTypeCredit, amount, remark, source)
		return walletRepo.CreateTransaction(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wallet credited",
		"account_id", accountID.String(),
		"amount", amount,
		"source", string(source),
	)
	return entry, nil
}

// GetStatement returns the account's ledger entries together with the total
// entry count and the current balance
func (s *WalletServiceImpl) GetStatement(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*wallet.Transaction, int64, int64, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, 0, 0, err
	}

	offset := (page - 1) * perPage
	entries, err := s.walletRepo.GetTransactionsByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, 0, err
	}

	total, err := s.walletRepo.CountTransactionsByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, 0, err
	}

	return entries, total, acc.WalletBalance, nil
}

// RequestWithdrawal debits the wallet immediately and opens a pending
// withdrawal. The debit entry and the request commit together, so the held
// amount can never be spent twice while an admin deliberates.
func (s *WalletServiceImpl) RequestWithdrawal(ctx context.Context, accountID uuid.UUID, amount int64) (*wallet.Withdrawal, error) {
	if amount < s.walletCfg.MinWithdrawal {
		return nil, ErrBelowMinWithdrawal
	}

	var withdrawal *wallet.Withdrawal

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		acc, err := accountRepo.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if !acc.HasPaymentDetails() {
			return account.ErrPaymentDetailsMissing
		}

		if err := acc.Debit(amount); err != nil {
			return err
		}
		if err := accountRepo.Update(ctx, acc); err != nil {
			return err
		}

		entry := wallet.NewTransaction(accountID, wallet.TransactionTypeDebit, amount, "Withdrawal request", wallet.SourceUser)
		if err := walletRepo.CreateTransaction(ctx, entry); err != nil {
			return err
		}

		withdrawal = wallet.NewWithdrawal(accountID, amount, acc.PaymentMethod, acc.PaymentIdentifier)
		return walletRepo.CreateWithdrawal(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal requested",
		"account_id", accountID.String(),
		"withdrawal_id", withdrawal.ID.String(),
		"amount", amount,
	)
	return withdrawal, nil
}

// GetWithdrawals returns the account's withdrawal requests
func (s *WalletServiceImpl) GetWithdrawals(ctx context.Context, accountID uuid.UUID) ([]*wallet.Withdrawal, error) {
	return s.walletRepo.GetWithdrawalsByAccountID(ctx, accountID)
}

// ListPendingWithdrawals returns open requests across accounts for admin review
func (s *WalletServiceImpl) ListPendingWithdrawals(ctx context.Context, page, perPage int) ([]*wallet.Withdrawal, error) {
	offset := (page - 1) * perPage
	return s.walletRepo.ListWithdrawalsByStatus(ctx, wallet.WithdrawalStatusPending, perPage, offset)
}

// DecideWithdrawal resolves a pending withdrawal under a row lock so two
// admins cannot decide the same request. Approval records the decision and
// moves no money: the amount already left the wallet at request time.
// Rejection refunds the amount with its own credit entry.
func (s *WalletServiceImpl) DecideWithdrawal(ctx context.Context, accountID, withdrawalID uuid.UUID, approve bool, remark string) (*wallet.Withdrawal, error) {
	var withdrawal *wallet.Withdrawal

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		w, err := walletRepo.LockWithdrawalForUpdate(ctx, accountID, withdrawalID)
		if err != nil {
			return err
		}

		if !w.IsPending() {
			return wallet.ErrWithdrawalNotPending{WithdrawalID: w.ID, Status: w.Status}
		}

		if approve {
			w.Decide(wallet.WithdrawalStatusApproved, remark)
		} else {
			acc, err := accountRepo.LockForUpdate(ctx, w.AccountID)
			if err != nil {
				return err
			}

			if err := acc.Credit(w.Amount); err != nil {
				return err
			}
			if err := accountRepo.Update(ctx, acc); err != nil {
				return err
			}

			entry := wallet.NewTransaction(w.AccountID, wallet.TransactionTypeCredit, w.Amount, RejectionRefundRemark, wallet.SourceAdmin)
			if err := walletRepo.CreateTransaction(ctx, entry); err != nil {
				return err
			}

			w.Decide(wallet.WithdrawalStatusRejected, remark)
		}

		if err := walletRepo.UpdateWithdrawal(ctx, w); err != nil {
			return err
		}

		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal decided",
		"withdrawal_id", withdrawal.ID.String(),
		"status", string(withdrawal.Status),
	)
	return withdrawal, nil
}
