package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvo/rollcall/internal/config"
)

// ResultsHandler serves exported report workbooks from the results directory.
type ResultsHandler struct {
	config *config.Config
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(cfg *config.Config) *ResultsHandler {
	return &ResultsHandler{config: cfg}
}

// ResultFile describes one exported workbook.
type ResultFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// List returns the exported workbooks, newest first.
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.config.Results.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			respondJSON(w, http.StatusOK, []ResultFile{})
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	files := make([]ResultFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".xlsx") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ResultFile{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified > files[j].Modified })

	respondJSON(w, http.StatusOK, files)
}

// Download streams one workbook. The file name is reduced to its base so a
// crafted path cannot escape the results directory.
func (h *ResultsHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(chi.URLParam(r, "filename"))
	if filename == "." || filename == "/" || !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		respondError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	path := filepath.Join(h.config.Results.Dir, filename)
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}
