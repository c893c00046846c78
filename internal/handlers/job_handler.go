package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gigpay/backend/internal/middleware"
	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/services"
)

type JobHandler struct {
	jobs   *services.JobService
	ledger *services.LedgerService
}

func NewJobHandler(jobs *services.JobService, ledger *services.LedgerService) *JobHandler {
	return &JobHandler{jobs: jobs, ledger: ledger}
}

// ListUnpaid returns the caller's unpaid jobs on active contracts.
// @Summary List unpaid jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} models.Job
// @Router /jobs/unpaid [get]
func (h *JobHandler) ListUnpaid(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	jobs, err := h.jobs.ListUnpaid(r.Context(), caller.ID)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Pay pays a job on behalf of the calling client.
// @Summary Pay a job
// @Description Moves the job price from the caller to the contractor and marks the job paid, atomically
// @Tags jobs
// @Produce json
// @Param jobID path int true "Job ID"
// @Success 200 {object} models.Job
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /jobs/{jobID}/pay [post]
func (h *JobHandler) Pay(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		SendErrorResponse(w, "Invalid job id", http.StatusBadRequest, nil)
		return
	}

	job, err := h.ledger.PayJob(r.Context(), jobID, caller.ID)
	if err != nil {
		SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Job paid successfully",
		"job":     job,
	})
}
