package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/goprod/enrich-worker/internal/db"
	"github.com/goprod/enrich-worker/internal/enrich"
)

// Runner abstracts the batch processor for testing.
type Runner interface {
	Run(ctx context.Context, req enrich.Request) (*enrich.Result, error)
}

// QueueAdmin abstracts the queue repository operations the API exposes
// beyond processing itself.
type QueueAdmin interface {
	Enqueue(ctx context.Context, companyID, artistID uuid.UUID, priority string) (uuid.UUID, error)
	Counts(ctx context.Context, companyID uuid.UUID) (*db.StatusCounts, error)
}

// Handlers implements the worker's HTTP endpoints.
type Handlers struct {
	processor Runner
	queue     QueueAdmin
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(processor Runner, queue QueueAdmin) *Handlers {
	return &Handlers{processor: processor, queue: queue}
}

// processRequest is the body of POST /queue-stats.
type processRequest struct {
	CompanyID string `json:"company_id"`
	BatchSize int    `json:"batch_size"`
	DryRun    bool   `json:"dry_run"`
}

// enqueueRequest is the body of POST /queue-stats/enqueue.
type enqueueRequest struct {
	CompanyID string `json:"company_id"`
	ArtistID  string `json:"artist_id"`
	Priority  string `json:"priority"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ProcessQueue runs one enrichment invocation for a company.
func (h *Handlers) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "company_id required")
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}

	result, err := h.processor.Run(r.Context(), enrich.Request{
		CompanyID: companyID,
		BatchSize: req.BatchSize,
		DryRun:    req.DryRun,
	})
	if errors.Is(err, enrich.ErrCompanyRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Locked == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "locked": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "processed": result.Processed})
}

// Enqueue inserts a pending queue entry for an artist. Re-enqueueing an
// artist that is already pending or locked is a no-op.
func (h *Handlers) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "company_id required")
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}
	artistID, err := uuid.Parse(req.ArtistID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid artist_id")
		return
	}

	id, err := h.queue.Enqueue(r.Context(), companyID, artistID, req.Priority)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if id == uuid.Nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "queued": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "queued": true, "id": id})
}

// QueueStatus reports per-status entry counts for a company.
func (h *Handlers) QueueStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("company_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "company_id required")
		return
	}
	companyID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}

	counts, err := h.queue.Counts(r.Context(), companyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"pending": counts.Pending,
		"locked":  counts.Locked,
		"done":    counts.Done,
		"error":   counts.Error,
	})
}
