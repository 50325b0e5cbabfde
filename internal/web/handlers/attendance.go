package handlers

import (
	"net/http"

	"github.com/ngocvo/rollcall/internal/attendance"
	"github.com/ngocvo/rollcall/internal/config"
)

// AttendanceHandler handles attendance sheet analysis.
type AttendanceHandler struct {
	config *config.Config
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(cfg *config.Config) *AttendanceHandler {
	return &AttendanceHandler{config: cfg}
}

// AnalyzeResponse is the attendance analysis payload.
type AnalyzeResponse struct {
	Summary        attendance.Summary         `json:"summary"`
	MissingRecords []attendance.MissingRecord `json:"missing_records"`
	ParseErrors    []string                   `json:"parse_errors,omitempty"`
}

// Analyze scans the attendance directory and reports every flagged day.
func (h *AttendanceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	parser := attendance.NewParser(h.config.Symbols.IsLeaveCode)
	result, err := parser.ScanDir(h.config.Attendance.Dir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	missing := result.MissingRecords(h.config.Symbols.Description, h.config.Symbols.DefaultExplanation)

	resp := AnalyzeResponse{
		Summary:        result.Summarize(missing),
		MissingRecords: missing,
	}
	for _, parseErr := range result.ParseErrors {
		resp.ParseErrors = append(resp.ParseErrors, parseErr.Error())
	}

	respondJSON(w, http.StatusOK, resp)
}
