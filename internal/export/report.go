// Package export writes reconciliation results as xlsx workbooks into the
// results directory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ngocvo/rollcall/internal/attendance"
	"github.com/ngocvo/rollcall/internal/extract"
)

// ReportPath builds a timestamped workbook path in the results directory,
// e.g. reconcile_20250305_143200.xlsx.
func ReportPath(resultsDir, prefix string, now time.Time) string {
	name := fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("20060102_150405"))
	return filepath.Join(resultsDir, name)
}

// WriteReport writes the reconciliation report workbook: one row per flagged
// attendance record, with the matched evidence photo when one was found.
func WriteReport(path string, records []attendance.MissingRecord) error {
	headers := []string{
		"Employee",
		"Date",
		"Weekday",
		"Issue",
		"Description",
		"Explanation",
		"Matched Photo",
		"Distance",
	}

	return writeSheet(path, "Reconciliation", headers, len(records), func(f *excelize.File, sheet string, i, row int) error {
		record := records[i]
		distance := ""
		if record.MatchedImage != "" {
			distance = fmt.Sprintf("%.4f", record.Distance)
		}
		values := []any{
			record.PersonName,
			record.Date,
			record.Weekday,
			string(record.IssueKind),
			record.Description,
			record.Explanation,
			record.MatchedImage,
			distance,
		}
		return setRow(f, sheet, row, values)
	})
}

// WriteScanResults writes the image-processing workbook: one row per evidence
// photo with the overlay text read off it.
func WriteScanResults(path string, results []extract.ImageResult) error {
	headers := []string{"Photo", "Datetime", "Location"}

	return writeSheet(path, "Photos", headers, len(results), func(f *excelize.File, sheet string, i, row int) error {
		result := results[i]
		return setRow(f, sheet, row, []any{result.Image, result.Datetime, result.Location})
	})
}

func writeSheet(path, sheet string, headers []string, rows int, fill func(f *excelize.File, sheet string, i, row int) error) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultSheet, _ := f.GetSheetIndex("Sheet1"); defaultSheet != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := setRow(f, sheet, 1, toAny(headers)); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		if err := fill(f, sheet, i, i+2); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure results dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}
