package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ngocvo/rollcall/internal/batch"
	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/constants"
	"github.com/ngocvo/rollcall/internal/export"
	"github.com/ngocvo/rollcall/internal/extract"
	"github.com/ngocvo/rollcall/internal/identity"
)

// ScanHandler starts image-processing batches that read the timestamp and
// location overlay off every evidence photo.
type ScanHandler struct {
	config    *config.Config
	registry  *batch.Registry
	extractor extract.Extractor
}

// NewScanHandler creates a new scan handler. A nil extractor disables the
// endpoint.
func NewScanHandler(cfg *config.Config, registry *batch.Registry, extractor extract.Extractor) *ScanHandler {
	return &ScanHandler{
		config:    cfg,
		registry:  registry,
		extractor: extractor,
	}
}

// ScanRequest limits a scan to a single day folder when Day is set (two
// digit day-of-month).
type ScanRequest struct {
	Day         string `json:"day"`
	Concurrency int    `json:"concurrency"`
}

// Start launches an async batch extracting overlay text from evidence photos.
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "text extractor is not configured")
		return
	}

	var req ScanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}
	if req.Concurrency <= 0 {
		req.Concurrency = h.config.Batch.Workers
	}

	photos, err := h.collectPhotos(req.Day)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(photos) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"message": "no evidence photos found"})
		return
	}

	units := make([]batch.Unit, 0, len(photos))
	for _, photo := range photos {
		photo := photo
		units = append(units, batch.Unit{
			Label: filepath.Base(photo),
			Run: func(ctx context.Context) (any, error) {
				data, err := os.ReadFile(photo)
				if err != nil {
					return nil, err
				}
				extraction, err := h.extractor.Extract(ctx, data)
				if err != nil {
					return nil, err
				}
				return extract.ImageResult{Image: photo, Extraction: extraction}, nil
			},
		})
	}

	task := h.registry.Create("scan", len(units))
	orch := batch.NewOrchestrator(req.Concurrency, constants.DefaultUnitTimeout)
	go orch.Run(context.Background(), task, units, h.finalize)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"task_id": task.ID,
		"total":   len(units),
	})
}

// collectPhotos lists evidence photos, either for one day folder or across
// every day folder under the evidence root.
func (h *ScanHandler) collectPhotos(day string) ([]string, error) {
	if day != "" {
		return identity.ListImages(filepath.Join(h.config.Evidence.Dir, day), h.config.Symbols.IsImageFile)
	}

	entries, err := os.ReadDir(h.config.Evidence.Dir)
	if err != nil {
		return nil, err
	}

	var photos []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		images, err := identity.ListImages(filepath.Join(h.config.Evidence.Dir, entry.Name()), h.config.Symbols.IsImageFile)
		if err != nil {
			continue
		}
		photos = append(photos, images...)
	}
	return photos, nil
}

func (h *ScanHandler) finalize(task *batch.Task) error {
	snap := task.Snapshot()

	results := make([]extract.ImageResult, 0, len(snap.Results))
	for _, result := range snap.Results {
		if imageResult, ok := result.(extract.ImageResult); ok {
			results = append(results, imageResult)
		}
	}

	path := export.ReportPath(h.config.Results.Dir, "scan", time.Now())
	if err := export.WriteScanResults(path, results); err != nil {
		return err
	}
	task.SetOutputFile(path)
	return nil
}
