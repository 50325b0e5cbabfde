package attendance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// summaryMarker appears in the file name of aggregated explanation reports
// dropped into the same directory; those are outputs, not source sheets.
const summaryMarker = "GIAI TRINH"

// ScanResult holds everything a directory scan produced.
type ScanResult struct {
	Records     map[string][]DayRecord // person name -> chronological records
	ParseErrors []*ParseError
}

// ScanDir parses every attendance sheet in dir, one .xlsx file per person
// (the file base name is the person name). Editor temp files and summary
// reports are skipped. Per-file parse failures are collected in the result.
func (p *Parser) ScanDir(dir string) (*ScanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading attendance dir %s: %w", dir, err)
	}

	result := &ScanResult{Records: make(map[string][]DayRecord)}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			continue
		}
		if strings.HasPrefix(name, "~$") {
			continue
		}
		upper := strings.ToUpper(name)
		if strings.Contains(upper, summaryMarker) || strings.Contains(upper, "GIẢI TRÌNH") {
			continue
		}

		person := strings.TrimSuffix(name, filepath.Ext(name))
		records, err := p.ParseSheet(filepath.Join(dir, name))
		if err != nil {
			var parseErr *ParseError
			if pe, ok := err.(*ParseError); ok {
				parseErr = pe
			} else {
				parseErr = &ParseError{File: name, Err: err}
			}
			result.ParseErrors = append(result.ParseErrors, parseErr)
			continue
		}
		result.Records[person] = records
	}

	return result, nil
}

// DescribeFunc renders a human-readable description for an issue kind.
type DescribeFunc func(kind string) string

// MissingRecords extracts every flagged day across all persons, sorted by
// person name then date string, with descriptions and the default
// explanation attached.
func (r *ScanResult) MissingRecords(describe DescribeFunc, explanation string) []MissingRecord {
	var missing []MissingRecord

	for person, records := range r.Records {
		for _, record := range records {
			if !record.HasIssue {
				continue
			}
			desc := describe(string(record.IssueKind))
			if record.IssueKind == IssueInvalidText && len(record.InvalidValues) > 0 {
				desc = desc + ": " + strings.Join(record.InvalidValues, ", ")
			}
			missing = append(missing, MissingRecord{
				PersonName:  person,
				Date:        record.Date,
				Weekday:     record.Weekday,
				IssueKind:   record.IssueKind,
				Description: desc,
				Explanation: explanation,
			})
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].PersonName != missing[j].PersonName {
			return missing[i].PersonName < missing[j].PersonName
		}
		return missing[i].Date < missing[j].Date
	})

	return missing
}

// Summary aggregates scan totals for status output.
type Summary struct {
	TotalPersons      int            `json:"total_persons"`
	TotalRecords      int            `json:"total_records"`
	TotalMissing      int            `json:"total_missing"`
	IssueBreakdown    map[string]int `json:"issue_breakdown"`
	PersonsWithIssues int            `json:"persons_with_issues"`
	ParseErrors       int            `json:"parse_errors"`
}

// Summarize computes totals over the scan and its extracted missing records.
func (r *ScanResult) Summarize(missing []MissingRecord) Summary {
	summary := Summary{
		TotalPersons:   len(r.Records),
		TotalMissing:   len(missing),
		IssueBreakdown: make(map[string]int),
		ParseErrors:    len(r.ParseErrors),
	}

	for _, records := range r.Records {
		summary.TotalRecords += len(records)
	}

	persons := make(map[string]struct{})
	for _, m := range missing {
		summary.IssueBreakdown[string(m.IssueKind)]++
		persons[m.PersonName] = struct{}{}
	}
	summary.PersonsWithIssues = len(persons)

	return summary
}
