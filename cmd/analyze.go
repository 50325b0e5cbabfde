package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ngocvo/rollcall/internal/attendance"
	"github.com/ngocvo/rollcall/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan attendance sheets and list flagged days",
	Long: `Parse every attendance sheet in the attendance directory and print
the days with missing or malformed check-in/check-out data, grouped by
employee.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("summary", false, "Print totals only, without per-day detail")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	summaryOnly := mustGetBool(cmd, "summary")

	parser := attendance.NewParser(cfg.Symbols.IsLeaveCode)
	result, err := parser.ScanDir(cfg.Attendance.Dir)
	if err != nil {
		return err
	}

	missing := result.MissingRecords(cfg.Symbols.Description, cfg.Symbols.DefaultExplanation)
	summary := result.Summarize(missing)

	fmt.Printf("Scanned %d sheets, %d day records\n", summary.TotalPersons, summary.TotalRecords)
	fmt.Printf("Flagged days: %d across %d employees\n", summary.TotalMissing, summary.PersonsWithIssues)

	kinds := make([]string, 0, len(summary.IssueBreakdown))
	for kind := range summary.IssueBreakdown {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-18s %d\n", kind, summary.IssueBreakdown[kind])
	}

	for _, parseErr := range result.ParseErrors {
		fmt.Printf("Warning: %v\n", parseErr)
	}

	if summaryOnly {
		return nil
	}

	current := ""
	for _, record := range missing {
		if record.PersonName != current {
			current = record.PersonName
			fmt.Printf("\n%s\n", current)
		}
		fmt.Printf("  %s (%s): %s\n", record.Date, record.Weekday, record.Description)
	}
	return nil
}
