package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestResultsList(t *testing.T) {
	cfg := testConfig(t)
	handler := NewResultsHandler(cfg)

	for _, name := range []string{"reconcile_20250305_143200.xlsx", "scan_20250306_090000.xlsx", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(cfg.Results.Dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var files []ResultFile
	if err := json.NewDecoder(rec.Body).Decode(&files); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 xlsx files, got %d: %v", len(files), files)
	}
}

func TestResultsDownload(t *testing.T) {
	cfg := testConfig(t)
	handler := NewResultsHandler(cfg)

	content := []byte("workbook bytes")
	if err := os.WriteFile(filepath.Join(cfg.Results.Dir, "report.xlsx"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/report.xlsx", nil)
	req = requestWithChiParams(req, map[string]string{"filename": "report.xlsx"})
	rec := httptest.NewRecorder()
	handler.Download(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != string(content) {
		t.Error("downloaded content does not match file")
	}
}

func TestResultsDownloadRejectsTraversal(t *testing.T) {
	cfg := testConfig(t)
	handler := NewResultsHandler(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/x", nil)
	req = requestWithChiParams(req, map[string]string{"filename": "../../etc/passwd"})
	rec := httptest.NewRecorder()
	handler.Download(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for traversal attempt, got %d", rec.Code)
	}
}

func TestResultsDownloadMissing(t *testing.T) {
	cfg := testConfig(t)
	handler := NewResultsHandler(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/gone.xlsx", nil)
	req = requestWithChiParams(req, map[string]string{"filename": "gone.xlsx"})
	rec := httptest.NewRecorder()
	handler.Download(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
