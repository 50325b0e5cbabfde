package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvo/rollcall/internal/store"
)

// RunsHandler serves persisted run history.
type RunsHandler struct {
	runs *store.Store
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runs *store.Store) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// List returns persisted runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run store is not available")
		return
	}

	runs, err := h.runs.ListRuns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	respondJSON(w, http.StatusOK, runs)
}

// Records returns the matched records persisted for one run.
func (h *RunsHandler) Records(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run store is not available")
		return
	}

	runID := chi.URLParam(r, "runID")
	records, err := h.runs.RunRecords(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(records) == 0 {
		respondError(w, http.StatusNotFound, "run not found or has no records")
		return
	}
	respondJSON(w, http.StatusOK, records)
}
