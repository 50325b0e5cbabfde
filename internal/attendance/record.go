// Package attendance parses per-person time-clock sheets and flags days
// with missing or malformed check-in/check-out data.
package attendance

// IssueKind classifies why a day-record fails the completeness checks.
type IssueKind string

const (
	// IssueInvalidText marks a row with a non-empty time field that is not
	// time-shaped (free text like "Nghỉ" punched into a time column).
	IssueInvalidText IssueKind = "invalid_text"

	// IssueMissingBoth marks a row with no valid check-in and no valid check-out.
	IssueMissingBoth IssueKind = "missing_both"

	// IssueMissingCheckin marks a row with check-outs but no valid check-in.
	IssueMissingCheckin IssueKind = "missing_checkin"

	// IssueMissingCheckout marks a row with check-ins but no valid check-out.
	IssueMissingCheckout IssueKind = "missing_checkout"
)

// DayRecord is one classified row of a person's attendance table.
// Immutable once the classifier has run.
type DayRecord struct {
	Date          string    `json:"date"` // D/M/YYYY as it appears in the sheet
	Weekday       string    `json:"weekday"`
	CheckIn1      string    `json:"check_in_1"`
	CheckOut1     string    `json:"check_out_1"`
	CheckIn2      string    `json:"check_in_2"`
	CheckOut2     string    `json:"check_out_2"`
	CheckIn3      string    `json:"check_in_3"`
	CheckOut3     string    `json:"check_out_3"`
	Symbol        string    `json:"symbol"`
	IsOffDay      bool      `json:"is_off_day"`
	HasIssue      bool      `json:"has_issue"`
	IssueKind     IssueKind `json:"issue_kind,omitempty"`
	InvalidValues []string  `json:"invalid_values,omitempty"`
}

// MissingRecord projects a flagged DayRecord for reconciliation. MatchedImage
// and Distance are attached once by the evidence matcher; read-only after.
type MissingRecord struct {
	PersonName   string    `json:"person_name"`
	Date         string    `json:"date"`
	Weekday      string    `json:"weekday"`
	IssueKind    IssueKind `json:"issue_kind"`
	Description  string    `json:"issue_description"`
	Explanation  string    `json:"explanation"`
	MatchedImage string    `json:"matched_image,omitempty"`
	Distance     float64   `json:"distance,omitempty"`
}

// Day returns the two-digit day-of-month component of the record date, used
// to locate the matching evidence photo folder. Empty when the date is not
// in the accepted D/M/YYYY shape.
func (r MissingRecord) Day() string {
	for i := 0; i < len(r.Date); i++ {
		if r.Date[i] == '/' {
			day := r.Date[:i]
			if len(day) == 1 {
				return "0" + day
			}
			return day
		}
	}
	return ""
}
