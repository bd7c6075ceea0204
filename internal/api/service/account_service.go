package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
)

const resetTokenTTL = time.Hour

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
	outboxRepo  outbox.Repository
	db          TxRunner
	authCfg     *config.AuthConfig
	logger      *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	logger *slog.Logger,
	authCfg *config.AuthConfig,
	db TxRunner,
	accountRepo account.Repository,
	outboxRepo outbox.Repository,
) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		db:          db,
		authCfg:     authCfg,
		logger:      logger,
	}
}

// Register creates a new account, hashes the password, and issues a session
// token. The welcome email is enqueued in the same transaction as the insert.
func (s *AccountServiceImpl) Register(ctx context.Context, name, email, password string, role account.Role) (*account.Account, string, error) {
	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", account.ErrDuplicateEmail{Email: email}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	acc, err := account.NewAccount(name, email, string(hash), role)
	if err != nil {
		return nil, "", err
	}
	// Buyers are usable immediately; selling roles stay pending until an
	// admin decision
	if role == account.RoleUser || role == account.RoleAdmin {
		acc.Status = account.StatusApproved
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.accountRepo.WithTx(tx).Create(ctx, acc); err != nil {
			return err
		}

		event := shared.NewNotificationEvent(shared.NotificationWelcome, acc.Email, map[string]string{
			"name": acc.Name,
		})
		return enqueueNotification(ctx, s.outboxRepo.WithTx(tx), event)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := middleware.GenerateToken(acc.ID, acc.Role, s.authCfg.JWTSecret, s.authCfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Account registered", "account_id", acc.ID.String(), "role", string(acc.Role))
	return acc, token, nil
}

// Login authenticates by email and password. Both a missing account and a
// wrong password collapse to ErrInvalidCredentials.
func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (*account.Account, string, error) {
	acc, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if acc == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(acc.ID, acc.Role, s.authCfg.JWTSecret, s.authCfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}

	return acc, token, nil
}

// GetByID retrieves an account, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// UpdatePaymentDetails saves the account's payout destination
func (s *AccountServiceImpl) UpdatePaymentDetails(ctx context.Context, id uuid.UUID, method, identifier string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	acc.PaymentMethod = method
	acc.PaymentIdentifier = identifier
	acc.Version++
	acc.UpdatedAt = time.Now()

	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// SaveCart replaces the account's stored cart snapshot
func (s *AccountServiceImpl) SaveCart(ctx context.Context, id uuid.UUID, items map[string]int) error {
	if items == nil {
		items = map[string]int{}
	}
	return s.accountRepo.UpdateCart(ctx, id, items)
}

// GetCart returns the account's stored cart snapshot
func (s *AccountServiceImpl) GetCart(ctx context.Context, id uuid.UUID) (map[string]int, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return acc.CartItems, nil
}

// RequestPasswordReset issues a one-hour reset token and emails it. Unknown
// emails succeed silently so the endpoint doesn't reveal which addresses
// hold accounts.
func (s *AccountServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc == nil {
		return nil
	}

	expires := time.Now().Add(resetTokenTTL)
	acc.ResetToken = uuid.New().String()
	acc.ResetTokenExpires = &expires
	acc.Version++
	acc.UpdatedAt = time.Now()

	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.accountRepo.WithTx(tx).Update(ctx, acc); err != nil {
			return err
		}

		event := shared.NewNotificationEvent(shared.NotificationPasswordReset, acc.Email, map[string]string{
			"name":  acc.Name,
			"token": acc.ResetToken,
		})
		return enqueueNotification(ctx, s.outboxRepo.WithTx(tx), event)
	})
}

// ResetPassword consumes an unexpired reset token and stores the new password
func (s *AccountServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	acc, err := s.accountRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	acc.PasswordHash = string(hash)
	acc.ResetToken = ""
	acc.ResetTokenExpires = nil
	acc.Version++
	acc.UpdatedAt = time.Now()

	return s.accountRepo.Update(ctx, acc)
}

// DecideAccount resolves a pending account. Seller and producer signups wait
// in pending until an admin approves or rejects them here.
func (s *AccountServiceImpl) DecideAccount(ctx context.Context, id uuid.UUID, approve bool) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.Status != account.StatusPending {
		return nil, ErrDecisionNotPending
	}

	acc.Status = account.StatusRejected
	if approve {
		acc.Status = account.StatusApproved
	}
	acc.Version++
	acc.UpdatedAt = time.Now()

	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account decided",
		"account_id", acc.ID.String(),
		"status", string(acc.Status),
	)
	return acc, nil
}

// List retrieves accounts by role for admin views
func (s *AccountServiceImpl) List(ctx context.Context, role account.Role, page, perPage int) ([]*account.Account, error) {
	offset := (page - 1) * perPage
	return s.accountRepo.List(ctx, role, perPage, offset)
}
