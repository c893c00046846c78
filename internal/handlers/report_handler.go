package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gigpay/backend/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// BestProfession returns the top-earning profession in a date range.
// @Summary Best profession
// @Tags admin
// @Produce json
// @Param start query string true "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param end query string true "Range end"
// @Success 200 {object} services.ProfessionEarnings
// @Failure 404 {object} ErrorResponse
// @Router /admin/best-profession [get]
func (h *ReportHandler) BestProfession(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	result, err := h.reports.BestProfession(r.Context(), start, end)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// BestClients returns the clients who paid the most in a date range.
// @Summary Best clients
// @Tags admin
// @Produce json
// @Param start query string true "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param end query string true "Range end"
// @Param limit query int false "Max rows (default 2)"
// @Success 200 {array} services.ClientSpend
// @Failure 404 {object} ErrorResponse
// @Router /admin/best-clients [get]
func (h *ReportHandler) BestClients(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	limit := services.DefaultBestClientsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			SendErrorResponse(w, "Invalid limit", http.StatusBadRequest, nil)
			return
		}
	}

	clients, err := h.reports.BestClients(r.Context(), start, end, limit)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errBadRange
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, errBadRange
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

const errBadRange = rangeError("start and end must be valid dates with end >= start")
