package attendance

import (
	"regexp"
	"strings"
)

// Column layout of a data row, fixed by the time-clock vendor:
// date, weekday, in1, out1, in2, out2, in3, out3, late, early, overtime
// fields and, in column 15, the status symbol.
const (
	colDate     = 0
	colWeekday  = 1
	colCheckIn1 = 2
	colSymbol   = 15
	minColumns  = 16
)

var (
	datePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// IsValidDate reports whether a cell holds a D/M/YYYY date. This is the sole
// row-validity gate: header, footer and spacer rows all fail it.
func IsValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// IsValidTime reports whether a cell holds an H:MM time after trimming.
func IsValidTime(s string) bool {
	return timePattern.MatchString(strings.TrimSpace(s))
}

// OffDayFunc reports whether a status symbol marks an approved off-day.
type OffDayFunc func(symbol string) bool

// Parser classifies raw attendance table rows into DayRecords.
type Parser struct {
	isOffDay OffDayFunc
}

// NewParser creates a parser using the given off-day symbol test.
func NewParser(isOffDay OffDayFunc) *Parser {
	return &Parser{isOffDay: isOffDay}
}

// ParseTable turns one person's table into classified day records, in row
// order. Rows failing the date gate or shorter than the fixed column count
// are skipped. Deterministic: the same table always yields the same list.
func (p *Parser) ParseTable(rows [][]string) []DayRecord {
	var records []DayRecord

	for _, row := range rows {
		if len(row) < minColumns {
			continue
		}

		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}

		if !IsValidDate(cells[colDate]) {
			continue
		}

		record := DayRecord{
			Date:      cells[colDate],
			Weekday:   cells[colWeekday],
			CheckIn1:  cells[colCheckIn1],
			CheckOut1: cells[colCheckIn1+1],
			CheckIn2:  cells[colCheckIn1+2],
			CheckOut2: cells[colCheckIn1+3],
			CheckIn3:  cells[colCheckIn1+4],
			CheckOut3: cells[colCheckIn1+5],
			Symbol:    cells[colSymbol],
			IsOffDay:  p.isOffDay(cells[colSymbol]),
		}

		classify(&record)
		records = append(records, record)
	}

	return records
}

// classify detects issues in a record. The invalid-text check runs first and
// fires even on off-days: free text in a time column always needs review.
func classify(record *DayRecord) {
	checkIns := []string{record.CheckIn1, record.CheckIn2, record.CheckIn3}
	checkOuts := []string{record.CheckOut1, record.CheckOut2, record.CheckOut3}

	var invalid []string
	for _, field := range []string{
		record.CheckIn1, record.CheckOut1,
		record.CheckIn2, record.CheckOut2,
		record.CheckIn3, record.CheckOut3,
	} {
		if field != "" && !IsValidTime(field) {
			invalid = append(invalid, field)
		}
	}

	hasValidCheckin := anyValidTime(checkIns)
	hasValidCheckout := anyValidTime(checkOuts)

	switch {
	case len(invalid) > 0:
		record.HasIssue = true
		record.IssueKind = IssueInvalidText
		record.InvalidValues = invalid
	case record.IsOffDay:
		// Approved leave: empty time columns are expected, nothing to flag.
	case !hasValidCheckin && !hasValidCheckout:
		record.HasIssue = true
		record.IssueKind = IssueMissingBoth
	case !hasValidCheckin:
		record.HasIssue = true
		record.IssueKind = IssueMissingCheckin
	case !hasValidCheckout:
		record.HasIssue = true
		record.IssueKind = IssueMissingCheckout
	}
}

func anyValidTime(fields []string) bool {
	for _, f := range fields {
		if IsValidTime(f) {
			return true
		}
	}
	return false
}
