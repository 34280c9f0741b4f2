// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrNoActiveSIM       = errors.New("no active sim for operator")
	ErrUnauthorized      = errors.New("operation not permitted for role")
	ErrRechargeFailed    = errors.New("recharge failed")
	// ErrCompensationFailed means money was taken and the refund transaction
	// could not be committed. Callers must treat this as an alerting condition.
	ErrCompensationFailed = errors.New("compensation failed")
)

// IsError reports whether err matches the target sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
