// internal/api/handler/registry.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"recharge-core/internal/domain"
	"recharge-core/internal/service"
	"recharge-core/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// RegistryHandler handles the SIM registry and offer catalog admin surface.
type RegistryHandler struct {
	service service.RegistryService
	logger  *slog.Logger
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(svc service.RegistryService, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{
		service: svc,
		logger:  logger,
	}
}

// ProvisionSIMRequest represents the request body for SIM provisioning.
type ProvisionSIMRequest struct {
	Operator         string               `json:"operator"`
	PhoneNumber      string               `json:"phone_number"`
	PIN              string               `json:"pin"`
	TransportKind    domain.TransportKind `json:"transport_kind"`
	TransportAddress string               `json:"transport_address"`
}

// ProvisionSIM handles SIM provisioning.
// POST /sims
func (h *RegistryHandler) ProvisionSIM(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req ProvisionSIMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	sim, err := h.service.ProvisionSIM(r.Context(), actor, req.Operator, req.PhoneNumber, req.PIN, req.TransportKind, req.TransportAddress)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusCreated, sim)
}

// ListSIMs handles the SIM listing request.
// GET /sims
func (h *RegistryHandler) ListSIMs(w http.ResponseWriter, r *http.Request) {
	sims, err := h.service.ListSIMs(r.Context())
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"data": sims})
}

// RefreshSIMBalanceRequest represents the request body for a balance refresh.
type RefreshSIMBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// RefreshSIMBalance stores an out-of-band balance estimate for a SIM.
// PUT /sims/{simID}/balance
func (h *RegistryHandler) RefreshSIMBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	simID, err := strconv.ParseInt(chi.URLParam(r, "simID"), 10, 64)
	if err != nil || simID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	var req RefreshSIMBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	if err := h.service.RefreshSIMBalance(r.Context(), actor, simID, req.Balance); err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"success": true})
}

// CreateOfferRequest represents the request body for offer creation.
type CreateOfferRequest struct {
	Operator        string          `json:"operator"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CommandTemplate string          `json:"command_template"`
}

// CreateOffer handles offer creation.
// POST /offers
func (h *RegistryHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), actor, req.Operator, req.Name, req.Price, req.CommandTemplate)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusCreated, offer)
}

// ListOffers handles the offer listing request.
// GET /offers
func (h *RegistryHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.ListOffers(r.Context())
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"data": offers})
}

// GetOperatorTemplate returns the configured flexy template override.
// GET /operators/{operator}/template
func (h *RegistryHandler) GetOperatorTemplate(w http.ResponseWriter, r *http.Request) {
	operator := chi.URLParam(r, "operator")
	tmpl, err := h.service.GetOperatorTemplate(r.Context(), operator)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, tmpl)
}

// SetOperatorTemplateRequest represents the request body for a template override.
type SetOperatorTemplateRequest struct {
	Template string `json:"template"`
}

// SetOperatorTemplate creates or replaces the flexy template override.
// PUT /operators/{operator}/template
func (h *RegistryHandler) SetOperatorTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req SetOperatorTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	if err := h.service.SetOperatorTemplate(r.Context(), actor, chi.URLParam(r, "operator"), req.Template); err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"success": true})
}
