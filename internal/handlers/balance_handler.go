package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gigpay/backend/internal/middleware"
	"github.com/gigpay/backend/internal/services"
)

type BalanceHandler struct {
	ledger    *services.LedgerService
	validator *ValidationHelper
}

func NewBalanceHandler(ledger *services.LedgerService) *BalanceHandler {
	return &BalanceHandler{
		ledger:    ledger,
		validator: NewValidationHelper(),
	}
}

// Deposit credits money to the caller's own balance.
// @Summary Deposit into a client balance
// @Description Deposits amount (cents) into the profile's balance, capped at 25% of outstanding unpaid jobs
// @Tags balances
// @Accept json
// @Produce json
// @Param userID path int true "Profile ID"
// @Param request body object{amount=int64} true "Deposit request"
// @Success 200 {object} object{balance=int64}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /balances/deposit/{userID} [post]
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		SendErrorResponse(w, "Invalid profile id", http.StatusBadRequest, nil)
		return
	}
	if caller.ID != userID {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	profile, err := h.ledger.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Deposit successful",
		"balance": profile.Balance,
	})
}
