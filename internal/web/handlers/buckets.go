package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/ngocvo/rollcall/internal/batch"
	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/identity"
)

// BucketsHandler owns the portrait bucket snapshot. The map is replaced
// wholesale on rescan and never mutated in place, so running batches keep
// reading the snapshot they started with.
type BucketsHandler struct {
	config   *config.Config
	registry *batch.Registry
	buckets  atomic.Pointer[identity.BucketMap]
}

// NewBucketsHandler creates the handler and loads the initial snapshot. A
// missing portrait directory yields an empty snapshot rather than an error;
// the first successful rescan fills it.
func NewBucketsHandler(cfg *config.Config, registry *batch.Registry) *BucketsHandler {
	h := &BucketsHandler{
		config:   cfg,
		registry: registry,
	}

	buckets, err := identity.ScanBuckets(cfg.Portraits.Dir, cfg.Symbols.IsImageFile)
	if err != nil {
		buckets = make(identity.BucketMap)
	}
	h.buckets.Store(&buckets)

	return h
}

// Current returns the active bucket snapshot.
func (h *BucketsHandler) Current() identity.BucketMap {
	return *h.buckets.Load()
}

// Rescan rebuilds the bucket snapshot from disk. Rejected while a batch is
// active: a half-swapped portrait store must never feed a running sweep.
func (h *BucketsHandler) Rescan(w http.ResponseWriter, r *http.Request) {
	if h.registry.Active() {
		respondError(w, http.StatusConflict, "a batch task is running, rescan is not allowed")
		return
	}

	buckets, err := identity.ScanBuckets(h.config.Portraits.Dir, h.config.Symbols.IsImageFile)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.buckets.Store(&buckets)

	respondJSON(w, http.StatusOK, buckets.Stats())
}

// Stats reports person and photo counts of the active snapshot.
func (h *BucketsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	buckets := h.Current()
	respondJSON(w, http.StatusOK, map[string]any{
		"stats":   buckets.Stats(),
		"persons": buckets.Persons(),
	})
}
