package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gigpay/backend/internal/middleware"
	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/services"
)

type ContractHandler struct {
	contracts *services.ContractService
}

func NewContractHandler(contracts *services.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// GetByID returns a contract the caller is party to.
// @Summary Get contract by id
// @Tags contracts
// @Produce json
// @Param id path int true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 404 {object} ErrorResponse
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		SendErrorResponse(w, "Invalid contract id", http.StatusBadRequest, nil)
		return
	}

	contract, err := h.contracts.GetByID(r.Context(), id, caller.ID)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

// List returns the caller's non-terminated contracts.
// @Summary List contracts
// @Tags contracts
// @Produce json
// @Success 200 {array} models.Contract
// @Router /contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	contracts, err := h.contracts.List(r.Context(), caller.ID)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	writeJSON(w, http.StatusOK, contracts)
}
