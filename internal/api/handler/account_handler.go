package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/account"
)

// AccountHandler handles HTTP requests for account and session operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Register handles creation of a new account, defaulting to the buyer role
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	role := account.Role(req.Role)
	if role == "" {
		role = account.RoleUser
	}

	acc, token, err := h.accountService.Register(c.Request.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		var duplicateEmailErr account.ErrDuplicateEmail
		if errors.As(err, &duplicateEmailErr) {
			h.logger.Warn("Attempt to register duplicate email", "email", req.Email)
			RespondConflict(c, "Account with this email already exists")
			return
		}
		if errors.Is(err, account.ErrEmptyName) || errors.Is(err, account.ErrInvalidEmail) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to register account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, AuthResponse{Token: token, Account: mapAccountToResponse(acc)})
}

// Login authenticates by email and password
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, token, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Invalid email or password")
			return
		}
		h.logger.Error("Failed to log in", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, AuthResponse{Token: token, Account: mapAccountToResponse(acc)})
}

// Me returns the authenticated account's profile
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	acc, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// UpdatePaymentDetails saves the authenticated account's payout destination
func (h *AccountHandler) UpdatePaymentDetails(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req UpdatePaymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.UpdatePaymentDetails(c.Request.Context(), accountID, req.PaymentMethod, req.PaymentIdentifier)
	if err != nil {
		h.logger.Error("Failed to update payment details", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// SaveCart replaces the authenticated account's stored cart
func (h *AccountHandler) SaveCart(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req SaveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	for productID, quantity := range req.Items {
		if _, err := uuid.Parse(productID); err != nil {
			RespondBadRequest(c, "Invalid product ID in cart: "+productID)
			return
		}
		if quantity <= 0 {
			RespondBadRequest(c, "Cart quantities must be positive")
			return
		}
	}

	if err := h.accountService.SaveCart(c.Request.Context(), accountID, req.Items); err != nil {
		h.logger.Error("Failed to save cart", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// GetCart returns the authenticated account's stored cart
func (h *AccountHandler) GetCart(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	items, err := h.accountService.GetCart(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to get cart", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"items": items})
}

// RequestPasswordReset issues a reset token. The response is identical for
// known and unknown emails.
func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.accountService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Failed to request password reset", "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{"message": "If the email exists, a reset link has been sent"})
}

// ResetPassword consumes a reset token and sets a new password
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.accountService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			RespondBadRequest(c, "Invalid or expired reset token")
			return
		}
		h.logger.Error("Failed to reset password", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"message": "Password updated"})
}

// List returns accounts by role for admin views
// DecideAccount resolves a pending seller or producer signup
func (h *AccountHandler) DecideAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var req ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.DecideAccount(c.Request.Context(), accountID, req.Decision == "approve")
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		switch {
		case errors.As(err, &accNotFound):
			RespondNotFound(c, "Account not found")
		case errors.Is(err, service.ErrDecisionNotPending):
			RespondConflict(c, "Account has already been decided")
		default:
			h.logger.Error("Failed to decide account", "account_id", accountID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

func (h *AccountHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	role := account.Role(c.DefaultQuery("role", string(account.RoleUser)))
	switch role {
	case account.RoleUser, account.RoleSeller, account.RoleProducer, account.RoleAdmin:
	default:
		RespondBadRequest(c, "Invalid role filter")
		return
	}

	accounts, err := h.accountService.List(c.Request.Context(), role, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, responses)
}
