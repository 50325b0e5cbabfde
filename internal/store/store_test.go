package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ngocvo/rollcall/internal/attendance"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "rollcall.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	completed := time.Now().Add(30 * time.Second)
	run := Run{
		ID:          "task-1",
		Kind:        "reconcile",
		Status:      "completed",
		Total:       12,
		Matched:     9,
		Errors:      1,
		OutputFile:  "/results/reconcile_20250305_143200.xlsx",
		StartedAt:   time.Now(),
		CompletedAt: &completed,
	}
	records := []attendance.MissingRecord{
		{
			PersonName:   "Lê Văn Tòng",
			Date:         "5/3/2025",
			Weekday:      "Wed",
			IssueKind:    attendance.IssueMissingCheckout,
			Description:  "Missing check-out time",
			MatchedImage: "/evidence/05/cam2.jpg",
			Distance:     0.42,
		},
		{
			PersonName:  "Nguyễn Thị Hồng Nhung",
			Date:        "7/3/2025",
			Weekday:     "Fri",
			IssueKind:   attendance.IssueMissingBoth,
			Description: "Missing both check-in and check-out",
		},
	}

	if err := store.SaveRun(ctx, run, records); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != "task-1" || got.Status != "completed" {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Total != 12 || got.Matched != 9 || got.Errors != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if got.OutputFile != run.OutputFile {
		t.Errorf("unexpected output file: %q", got.OutputFile)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed timestamp")
	}
}

func TestRunRecordsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: "task-2", Kind: "reconcile", Status: "completed", StartedAt: time.Now()}
	records := []attendance.MissingRecord{
		{PersonName: "A", Date: "1/3/2025", IssueKind: attendance.IssueInvalidText, Description: "Invalid entry: Nghỉ"},
		{PersonName: "B", Date: "2/3/2025", IssueKind: attendance.IssueMissingCheckin, MatchedImage: "/evidence/02/a.jpg", Distance: 0.55},
	}
	if err := store.SaveRun(ctx, run, records); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.RunRecords(ctx, "task-2")
	if err != nil {
		t.Fatalf("RunRecords failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].PersonName != "A" || got[0].IssueKind != attendance.IssueInvalidText {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].MatchedImage != "/evidence/02/a.jpg" || got[1].Distance != 0.55 {
		t.Errorf("unexpected second record: %+v", got[1])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := Run{ID: "old", Kind: "scan", Status: "completed", StartedAt: time.Now().Add(-time.Hour)}
	newer := Run{ID: "new", Kind: "reconcile", Status: "completed", StartedAt: time.Now()}
	if err := store.SaveRun(ctx, older, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := store.SaveRun(ctx, newer, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" {
		t.Errorf("expected newest first, got %v", runs)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rollcall.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	run := Run{ID: "persisted", Kind: "reconcile", Status: "failed", StartedAt: time.Now()}
	if err := store.SaveRun(context.Background(), run, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	store.Close()

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "persisted" {
		t.Errorf("expected persisted run after reopen, got %v", runs)
	}
}
