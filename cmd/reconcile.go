package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ngocvo/rollcall/internal/attendance"
	"github.com/ngocvo/rollcall/internal/batch"
	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/constants"
	"github.com/ngocvo/rollcall/internal/export"
	"github.com/ngocvo/rollcall/internal/identity"
	"github.com/ngocvo/rollcall/internal/store"
	"github.com/ngocvo/rollcall/internal/verify"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match flagged attendance days against evidence photos",
	Long: `Scan the attendance sheets, then for every flagged day run a face
verification sweep of the day's evidence photos against the employee's
portraits. Matches and an exported report land in the results directory.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().Int("concurrency", 0, "Worker pool size (defaults to BATCH_WORKERS)")
	reconcileCmd.Flags().Float64("threshold", 0, "Max oracle distance for a match (defaults to DISTANCE_THRESHOLD)")
	reconcileCmd.Flags().Bool("no-persist", false, "Skip writing the run to the history database")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Batch.Workers
	}
	threshold := mustGetFloat64(cmd, "threshold")
	if threshold <= 0 || threshold > 1 {
		threshold = cfg.Batch.DistanceThreshold
	}
	noPersist := mustGetBool(cmd, "no-persist")

	parser := attendance.NewParser(cfg.Symbols.IsLeaveCode)
	result, err := parser.ScanDir(cfg.Attendance.Dir)
	if err != nil {
		return err
	}
	for _, parseErr := range result.ParseErrors {
		fmt.Printf("Warning: %v\n", parseErr)
	}

	missing := result.MissingRecords(cfg.Symbols.Description, cfg.Symbols.DefaultExplanation)
	if len(missing) == 0 {
		fmt.Println("No flagged records to reconcile")
		return nil
	}

	buckets, err := identity.ScanBuckets(cfg.Portraits.Dir, cfg.Symbols.IsImageFile)
	if err != nil {
		return err
	}
	fmt.Printf("Reconciling %d flagged days against %d portrait buckets (threshold %.2f)\n",
		len(missing), len(buckets), threshold)

	scratch, err := verify.NewScratch("")
	if err != nil {
		return err
	}
	defer func() { _ = scratch.Cleanup() }()
	oracle := verify.NewClient(cfg.Oracle.URL, cfg.Oracle.Model)
	matcher := verify.NewMatcher(oracle, scratch, threshold, constants.FuzzyNameThreshold)

	units := make([]batch.Unit, 0, len(missing))
	matched := make([]attendance.MissingRecord, len(missing))
	for i, record := range missing {
		i, record := i, record
		units = append(units, batch.Unit{
			Label: record.PersonName + " " + record.Date,
			Run: func(ctx context.Context) (any, error) {
				day := record.Day()
				if day != "" {
					candidates, err := identity.ListImages(filepath.Join(cfg.Evidence.Dir, day), cfg.Symbols.IsImageFile)
					if err == nil {
						outcome := matcher.Match(ctx, record.PersonName, candidates, buckets)
						if outcome.Matched() {
							record.MatchedImage = outcome.BestPhoto
							record.Distance = outcome.BestDistance
						}
					}
				}
				matched[i] = record
				return record, nil
			},
		})
	}

	registry := batch.NewRegistry()
	task := registry.Create("reconcile", len(units))
	events := task.AddListener()

	bar := progressbar.Default(int64(len(units)), "reconciling")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			switch event.Type {
			case "progress", "unit_error":
				_ = bar.Add(1)
			}
		}
	}()

	orch := batch.NewOrchestrator(concurrency, constants.DefaultUnitTimeout)
	orch.Run(context.Background(), task, units, nil)
	// Run is synchronous, so once it returns no more events arrive. Closing
	// the listener lets the goroutine drain whatever is buffered and exit;
	// a dropped event can therefore never stall the command.
	task.RemoveListener(events)
	<-done
	_ = bar.Finish()

	snap := task.Snapshot()
	for _, unitErr := range snap.Errors {
		fmt.Printf("Warning: %s\n", unitErr)
	}

	matchedCount := 0
	for _, record := range matched {
		if record.MatchedImage != "" {
			matchedCount++
		}
	}
	fmt.Printf("Matched %d of %d flagged days\n", matchedCount, len(matched))

	path := export.ReportPath(cfg.Results.Dir, "reconcile", time.Now())
	if err := export.WriteReport(path, matched); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", path)

	if !noPersist {
		if err := persistRun(cfg, task, matched, matchedCount, path); err != nil {
			fmt.Printf("Warning: run not persisted: %v\n", err)
		}
	}
	return nil
}

func persistRun(cfg *config.Config, task *batch.Task, records []attendance.MissingRecord, matchedCount int, path string) error {
	runs, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer runs.Close()

	snap := task.Snapshot()
	completed := time.Now()
	run := store.Run{
		ID:          snap.ID,
		Kind:        snap.Kind,
		Status:      string(snap.Status),
		Total:       snap.Total,
		Matched:     matchedCount,
		Errors:      len(snap.Errors),
		OutputFile:  path,
		StartedAt:   snap.StartedAt,
		CompletedAt: &completed,
	}
	return runs.SaveRun(context.Background(), run, records)
}
