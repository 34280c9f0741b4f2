// internal/api/handler/recharge.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"recharge-core/internal/service"
	"recharge-core/internal/util"

	"github.com/shopspring/decimal"
)

// RechargeHandler handles HTTP requests for flexy and offer recharges.
type RechargeHandler struct {
	service service.RechargeService
	logger  *slog.Logger
}

// NewRechargeHandler creates a new RechargeHandler.
func NewRechargeHandler(svc service.RechargeService, logger *slog.Logger) *RechargeHandler {
	return &RechargeHandler{
		service: svc,
		logger:  logger,
	}
}

// FlexyRequest represents the request body for a flexy recharge.
type FlexyRequest struct {
	PhoneNumber string          `json:"phone_number"`
	Amount      decimal.Decimal `json:"amount"`
	Operator    string          `json:"operator"`
}

// Flexy handles the free-amount recharge request.
// POST /recharges/flexy
func (h *RechargeHandler) Flexy(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req FlexyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.PhoneNumber == "" || req.Operator == "" || req.Amount.LessThanOrEqual(decimal.Zero) {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.RechargeFlexy(r.Context(), actor, req.PhoneNumber, req.Amount, req.Operator)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	h.respondSuccess(w, result)
}

// OfferRequest represents the request body for an offer recharge.
type OfferRequest struct {
	PhoneNumber string `json:"phone_number"`
	OfferID     int64  `json:"offer_id"`
}

// Offer handles the fixed-price offer recharge request.
// POST /recharges/offer
func (h *RechargeHandler) Offer(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.PhoneNumber == "" || req.OfferID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.RechargeOffer(r.Context(), actor, req.PhoneNumber, req.OfferID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	h.respondSuccess(w, result)
}

func (h *RechargeHandler) respondSuccess(w http.ResponseWriter, result *service.RechargeResult) {
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"transaction_id": result.TransactionID,
		"message":        result.Message,
	})
}
