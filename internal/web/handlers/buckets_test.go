package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ngocvo/rollcall/internal/batch"
	"github.com/ngocvo/rollcall/internal/identity"
)

func TestBucketsStatsEmpty(t *testing.T) {
	cfg := testConfig(t)
	handler := NewBucketsHandler(cfg, batch.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buckets/stats", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Stats identity.Stats `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Stats.Persons != 0 || body.Stats.Photos != 0 {
		t.Errorf("expected empty stats, got %+v", body.Stats)
	}
}

func TestBucketsRescanPicksUpNewPortraits(t *testing.T) {
	cfg := testConfig(t)
	handler := NewBucketsHandler(cfg, batch.NewRegistry())

	// Portraits added after startup are invisible until a rescan.
	writeJPEG(t, filepath.Join(cfg.Portraits.Dir, "Lê Văn Tòng", "portrait.jpg"))
	writeJPEG(t, filepath.Join(cfg.Portraits.Dir, "Hồng Nhung.jpg"))

	if stats := handler.Current().Stats(); stats.Persons != 0 {
		t.Fatalf("expected stale snapshot before rescan, got %+v", stats)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/buckets/rescan", nil)
	rec := httptest.NewRecorder()
	handler.Rescan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stats := handler.Current().Stats()
	if stats.Persons != 2 || stats.Photos != 2 {
		t.Errorf("expected 2 persons 2 photos after rescan, got %+v", stats)
	}
}

func TestBucketsRescanRejectedDuringBatch(t *testing.T) {
	cfg := testConfig(t)
	registry := batch.NewRegistry()
	handler := NewBucketsHandler(cfg, registry)

	registry.Create("reconcile", 5) // pending task

	req := httptest.NewRequest(http.MethodPost, "/api/v1/buckets/rescan", nil)
	rec := httptest.NewRecorder()
	handler.Rescan(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while a batch is active, got %d", rec.Code)
	}
}
