package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvo/rollcall/internal/batch"
)

// TasksHandler exposes task polling and event streaming.
type TasksHandler struct {
	registry *batch.Registry
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(registry *batch.Registry) *TasksHandler {
	return &TasksHandler{registry: registry}
}

// List returns snapshots of all tasks, newest first.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.List())
}

func (h *TasksHandler) lookup(w http.ResponseWriter, r *http.Request) *batch.Task {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "missing task ID")
		return nil
	}
	task := h.registry.Get(taskID)
	if task == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return nil
	}
	return task
}

// Get returns one task snapshot without its full result set.
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	task := h.lookup(w, r)
	if task == nil {
		return
	}

	snap := task.Snapshot()
	// The full payload stays on the results endpoint.
	snap.Results = nil
	respondJSON(w, http.StatusOK, snap)
}

// Results returns the full results and unit errors of one task.
func (h *TasksHandler) Results(w http.ResponseWriter, r *http.Request) {
	task := h.lookup(w, r)
	if task == nil {
		return
	}
	respondJSON(w, http.StatusOK, task.Snapshot())
}

// Events streams task events over SSE until the task reaches a terminal
// status or the client disconnects.
func (h *TasksHandler) Events(w http.ResponseWriter, r *http.Request) {
	task := h.lookup(w, r)
	if task == nil {
		return
	}
	streamTaskEvents(w, r, task)
}
