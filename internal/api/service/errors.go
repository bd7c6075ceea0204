package service

import "errors"

// Common service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
	ErrBelowMinWithdrawal = errors.New("withdrawal amount is below the minimum")
	ErrProductOutOfStock  = errors.New("product is out of stock")
	ErrAlreadyApplied     = errors.New("a pending producer application already exists")
	ErrDecisionNotPending = errors.New("decision target is not pending")
)
