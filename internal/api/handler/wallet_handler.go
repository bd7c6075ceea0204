package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/wallet"
)

// WalletHandler handles HTTP requests for wallet ledger operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// Credit handles an admin crediting funds to a wallet
func (h *WalletHandler) Credit(c *gin.Context) {
	var req CreditWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	tx, err := h.walletService.Credit(c.Request.Context(), accountID, req.Amount, req.Remark, wallet.SourceAdmin)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to credit wallet", "account_id", req.AccountID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapTransactionToResponse(tx))
}

// GetStatement returns the authenticated account's ledger with the current balance
func (h *WalletHandler) GetStatement(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, totalItems, balance, err := h.walletService.GetStatement(c.Request.Context(), accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to get wallet statement", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, mapTransactionToResponse(entry))
	}

	response := StatementResponse{Balance: balance, Transactions: transactions}
	RespondWithPaginatedData(c, 200, response, pagination.Page, pagination.PerPage, int(totalItems))
}

// RequestWithdrawal opens a withdrawal request, holding the amount immediately
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	withdrawal, err := h.walletService.RequestWithdrawal(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBelowMinWithdrawal):
			RespondBadRequest(c, "Amount is below the minimum withdrawal")
		case errors.Is(err, account.ErrInsufficientBalance):
			RespondUnprocessable(c, "Insufficient wallet balance")
		case errors.Is(err, account.ErrPaymentDetailsMissing):
			RespondUnprocessable(c, "Payout details must be saved before withdrawing")
		default:
			h.logger.Error("Failed to request withdrawal", "account_id", accountID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapWithdrawalToResponse(withdrawal))
}

// GetWithdrawals returns the authenticated account's withdrawal requests
func (h *WalletHandler) GetWithdrawals(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	withdrawals, err := h.walletService.GetWithdrawals(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to get withdrawals", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		responses = append(responses, mapWithdrawalToResponse(w))
	}
	RespondOK(c, responses)
}

// ListPendingWithdrawals returns open requests across accounts for admin review
func (h *WalletHandler) ListPendingWithdrawals(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	withdrawals, err := h.walletService.ListPendingWithdrawals(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list pending withdrawals", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		responses = append(responses, mapWithdrawalToResponse(w))
	}
	RespondOK(c, responses)
}

// DecideWithdrawal resolves a pending withdrawal request
func (h *WalletHandler) DecideWithdrawal(c *gin.Context) {
	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid withdrawal ID")
		return
	}

	var req DecideWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	withdrawal, err := h.walletService.DecideWithdrawal(c.Request.Context(), accountID, withdrawalID, req.Decision == "approve", req.Remark)
	if err != nil {
		var notFound wallet.ErrWithdrawalNotFound
		var notPending wallet.ErrWithdrawalNotPending
		switch {
		case errors.As(err, &notFound):
			RespondNotFound(c, "Withdrawal not found")
		case errors.As(err, &notPending):
			RespondConflict(c, "Withdrawal has already been decided")
		default:
			h.logger.Error("Failed to decide withdrawal", "withdrawal_id", withdrawalID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapWithdrawalToResponse(withdrawal))
}
