package handlers

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/ngocvo/rollcall/internal/config"
)

// testConfig creates a config rooted in temp directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Load()
	cfg.Attendance.Dir = filepath.Join(root, "attendance")
	cfg.Portraits.Dir = filepath.Join(root, "portraits")
	cfg.Evidence.Dir = filepath.Join(root, "evidence")
	cfg.Results.Dir = filepath.Join(root, "results")
	cfg.Database.Path = filepath.Join(root, "results", "rollcall.db")

	for _, dir := range []string{cfg.Attendance.Dir, cfg.Portraits.Dir, cfg.Evidence.Dir, cfg.Results.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return cfg
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// writeAttendanceSheet creates an .xlsx sheet with a header block followed
// by the given data rows, mimicking the vendor export layout.
func writeAttendanceSheet(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	all := [][]string{
		{"MONTHLY ATTENDANCE"},
		{"Ngày", "Thứ", "Vào 1", "Ra 1", "Vào 2", "Ra 2", "Vào 3", "Ra 3"},
	}
	all = append(all, rows...)

	for i, r := range all {
		for j, cell := range r {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatal(err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving sheet: %v", err)
	}
}

// attendanceRow builds one 16-cell data row with the status symbol in the
// last column.
func attendanceRow(date, weekday, in1, out1, symbol string) []string {
	cells := make([]string, 16)
	cells[0] = date
	cells[1] = weekday
	cells[2], cells[3] = in1, out1
	cells[15] = symbol
	return cells
}

// writeJPEG writes a small real JPEG so staging and MIME detection work.
func writeJPEG(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, nil); err != nil {
		t.Fatal(err)
	}
}
