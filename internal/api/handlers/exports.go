package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/gcsexport"
	"github.com/finclaro/cashflow/internal/jobs"
)

// ExportsHandler handles report export endpoints.
type ExportsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// CreateExport handles POST /api/exports
func (h *ExportsHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	var req struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Format string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, to, ok := normalizeExportRange(req.From, req.To)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from/to")
		return
	}

	format, err := gcsexport.ParseFormat(req.Format)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ExportReportJob{
		JobID:      uuid.New().String(),
		Owner:      owner,
		From:       from.String(),
		To:         to.String(),
		Format:     string(format),
		Status:     jobs.JobStatusPending,
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := h.publisher.PublishExportReport(ctx, job); err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("owner", owner).
			Msg("Failed to enqueue export job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue export job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("owner", owner).Msg("Export job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetExport handles GET /api/exports/{id}
func (h *ExportsHandler) GetExport(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil || job.Owner != owner {
		middleware.WriteError(w, http.StatusNotFound, "Export not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListExports handles GET /api/exports
func (h *ExportsHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Owner:  owner,
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	list, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("owner", owner).
			Msg("Failed to list export jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list export jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"exports": list,
		"count":   len(list),
	})
}

// normalizeExportRange mirrors the table endpoint's range handling for the
// export request body.
func normalizeExportRange(fromStr, toStr string) (from, to civil.Date, ok bool) {
	if fromStr == "" && toStr == "" {
		from, to = calendar.DefaultRange(time.Now())
		return from, to, true
	}
	if fromStr == "" || toStr == "" {
		return civil.Date{}, civil.Date{}, false
	}
	from, ok = calendar.NormalizeMonthStart(fromStr)
	if !ok {
		return civil.Date{}, civil.Date{}, false
	}
	to, ok = calendar.NormalizeMonthStart(toStr)
	if !ok {
		return civil.Date{}, civil.Date{}, false
	}
	if _, err := calendar.MonthRange(from, to); err != nil {
		return civil.Date{}, civil.Date{}, false
	}
	return from, to, true
}
