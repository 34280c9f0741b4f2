// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"recharge-core/internal/api/types"
	"recharge-core/internal/domain"
	"recharge-core/internal/service"
	"recharge-core/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// MutationRequest represents the request body for a wallet mutation.
type MutationRequest struct {
	Kind        domain.MutationKind `json:"kind"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
}

// ApplyMutation handles a wallet mutation request against the target account.
// POST /wallets/{accountID}/mutations
func (h *WalletHandler) ApplyMutation(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	var req MutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.ApplyMutation(r.Context(), actor, accountID, req.Kind, req.Amount, req.Description)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"account_id":      accountID,
		"new_balance":     result.NewBalance,
		"new_debt":        result.NewDebt,
		"ledger_entry_id": result.LedgerEntryID,
	})
}

// GetWallet handles the wallet balance request.
// GET /wallets/{accountID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), accountID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"account_id": wallet.AccountID,
		"balance":    wallet.Balance,
		"debt":       wallet.Debt,
		"currency":   wallet.Currency,
	})
}

// GetHistory handles the ledger history request.
// GET /wallets/{accountID}/entries
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, totalCount, err := h.service.GetHistory(r.Context(), accountID, limit, offset)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.LedgerEntry]{
		Data:       entries,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
