package attendance

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseError records a single unreadable or unparseable source sheet.
// Parse errors are collected, not fatal: one bad file never aborts a scan.
type ParseError struct {
	File string `json:"file"`
	Err  error  `json:"-"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseSheet reads the first worksheet of an .xlsx attendance file and
// returns its classified day records. A file that cannot be opened or has
// no worksheet yields a ParseError and no records.
func (p *Parser) ParseSheet(path string) ([]DayRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{File: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}

	return p.ParseTable(rows), nil
}
