// internal/api/handler/common.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"recharge-core/internal/lock"
	"recharge-core/internal/util"
)

// DefaultTimeout bounds one HTTP request end to end. It must exceed the
// gateway dispatch timeout, or successful dispatches would be cut off
// mid-workflow.
const DefaultTimeout = 60 * time.Second

// respondWithJSON marshals the payload and writes it with the status code.
func respondWithJSON(logger *slog.Logger, w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors onto HTTP statuses. Post-debit
// recharge failures deliberately surface a generic message; the detail is
// stored on the ledger entry for audit.
func respondWithError(logger *slog.Logger, w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusForbidden
		message = "Operation not permitted"
	case util.IsError(err, util.ErrOfferNotFound):
		statusCode = http.StatusNotFound
		message = "Offer not found"
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrWalletNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, lock.ErrLockHeld):
		statusCode = http.StatusConflict
		message = "Another recharge is already in progress for this account"
	case util.IsError(err, util.ErrRechargeFailed):
		statusCode = http.StatusBadGateway
		message = "Recharge failed"
	case util.IsError(err, util.ErrCompensationFailed):
		logger.Error("Unresolved recharge surfaced to caller", "error", err)
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(logger, w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
