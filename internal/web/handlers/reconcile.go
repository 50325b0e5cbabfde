package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ngocvo/rollcall/internal/attendance"
	"github.com/ngocvo/rollcall/internal/batch"
	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/constants"
	"github.com/ngocvo/rollcall/internal/export"
	"github.com/ngocvo/rollcall/internal/identity"
	"github.com/ngocvo/rollcall/internal/store"
	"github.com/ngocvo/rollcall/internal/verify"
)

// ReconcileHandler starts reconciliation batches: one evidence-matching
// unit per flagged attendance record.
type ReconcileHandler struct {
	config   *config.Config
	registry *batch.Registry
	buckets  *BucketsHandler
	oracle   verify.Oracle
	runs     *store.Store
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(cfg *config.Config, registry *batch.Registry, buckets *BucketsHandler, oracle verify.Oracle, runs *store.Store) *ReconcileHandler {
	return &ReconcileHandler{
		config:   cfg,
		registry: registry,
		buckets:  buckets,
		oracle:   oracle,
		runs:     runs,
	}
}

// ReconcileRequest carries optional per-batch overrides.
type ReconcileRequest struct {
	Concurrency       int     `json:"concurrency"`
	DistanceThreshold float64 `json:"distance_threshold"`
}

// Start scans the attendance sheets and launches an async batch that tries
// to corroborate every flagged day with a face-verified evidence photo.
func (h *ReconcileHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}
	if req.Concurrency <= 0 {
		req.Concurrency = h.config.Batch.Workers
	}
	if req.DistanceThreshold <= 0 || req.DistanceThreshold > 1 {
		req.DistanceThreshold = h.config.Batch.DistanceThreshold
	}

	parser := attendance.NewParser(h.config.Symbols.IsLeaveCode)
	result, err := parser.ScanDir(h.config.Attendance.Dir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	missing := result.MissingRecords(h.config.Symbols.Description, h.config.Symbols.DefaultExplanation)
	if len(missing) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "no flagged records to reconcile",
			"summary": result.Summarize(missing),
		})
		return
	}

	scratch, err := verify.NewScratch("")
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	matcher := verify.NewMatcher(h.oracle, scratch, req.DistanceThreshold, constants.FuzzyNameThreshold)

	// The batch reads the snapshot taken here even if a rescan lands later.
	buckets := h.buckets.Current()

	units := make([]batch.Unit, 0, len(missing))
	for _, record := range missing {
		record := record
		units = append(units, batch.Unit{
			Label: record.PersonName + " " + record.Date,
			Run: func(ctx context.Context) (any, error) {
				return h.matchRecord(ctx, matcher, buckets, record)
			},
		})
	}

	task := h.registry.Create("reconcile", len(units))
	orch := batch.NewOrchestrator(req.Concurrency, constants.DefaultUnitTimeout)
	go func() {
		defer func() { _ = scratch.Cleanup() }()
		orch.Run(context.Background(), task, units, h.finalize)
	}()

	respondJSON(w, http.StatusAccepted, map[string]any{
		"task_id": task.ID,
		"total":   len(units),
	})
}

// MatchedRecord pairs a flagged record with its verification outcome.
type MatchedRecord struct {
	attendance.MissingRecord
	Outcome verify.OutcomeKind `json:"outcome"`
}

func (h *ReconcileHandler) matchRecord(ctx context.Context, matcher *verify.Matcher, buckets identity.BucketMap, record attendance.MissingRecord) (MatchedRecord, error) {
	matched := MatchedRecord{MissingRecord: record}

	day := record.Day()
	if day == "" {
		matched.Outcome = verify.OutcomeNoComparisons
		return matched, nil
	}

	candidates, err := identity.ListImages(filepath.Join(h.config.Evidence.Dir, day), h.config.Symbols.IsImageFile)
	if err != nil {
		// No evidence folder for this day; the record stays unmatched.
		matched.Outcome = verify.OutcomeNoComparisons
		return matched, nil
	}

	outcome := matcher.Match(ctx, record.PersonName, candidates, buckets)
	matched.Outcome = outcome.Kind
	if outcome.Matched() {
		matched.MatchedImage = outcome.BestPhoto
		matched.Distance = outcome.BestDistance
	}
	return matched, nil
}

// finalize exports the report workbook and persists the run. Runs once,
// serially, after every unit has settled.
func (h *ReconcileHandler) finalize(task *batch.Task) error {
	snap := task.Snapshot()

	records := make([]attendance.MissingRecord, 0, len(snap.Results))
	matchedCount := 0
	for _, result := range snap.Results {
		matched, ok := result.(MatchedRecord)
		if !ok {
			continue
		}
		if matched.MatchedImage != "" {
			matchedCount++
		}
		records = append(records, matched.MissingRecord)
	}

	path := export.ReportPath(h.config.Results.Dir, "reconcile", time.Now())
	if err := export.WriteReport(path, records); err != nil {
		return err
	}
	task.SetOutputFile(path)

	if h.runs != nil {
		completed := time.Now()
		run := store.Run{
			ID:          snap.ID,
			Kind:        snap.Kind,
			Status:      string(batch.StatusCompleted),
			Total:       snap.Total,
			Matched:     matchedCount,
			Errors:      len(snap.Errors),
			OutputFile:  path,
			StartedAt:   snap.StartedAt,
			CompletedAt: &completed,
		}
		if err := h.runs.SaveRun(context.Background(), run, records); err != nil {
			return err
		}
	}
	return nil
}
