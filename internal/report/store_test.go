package report

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"clipsight/internal/analysis"
	"clipsight/internal/validation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "clipsight.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndGetValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rep := &validation.Report{
		VideoID:     "vid-1",
		Consistency: []string{"objectTimeline has entry at 15-16s beyond video duration 10s"},
	}
	saved, err := store.SaveValidation(ctx, "vid-1", "/tmp/doc.json", "lenient", rep)
	if err != nil {
		t.Fatalf("SaveValidation failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved run should have an ID")
	}
	if !saved.Passed {
		t.Error("consistency warnings alone should still count as passed")
	}
	if saved.IssueCount != 1 {
		t.Errorf("IssueCount = %d, want 1", saved.IssueCount)
	}

	got, err := store.GetValidation(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetValidation failed: %v", err)
	}
	if got.VideoID != "vid-1" || got.Mode != "lenient" || got.SourcePath != "/tmp/doc.json" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Report == nil || len(got.Report.Consistency) != 1 {
		t.Errorf("report payload not preserved: %+v", got.Report)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should round-trip")
	}
}

func TestGetValidationNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetValidation(context.Background(), "nope")
	if err == nil {
		t.Fatal("unknown run should error")
	}
	if !errors.Is(err, analysis.ErrNotFound) {
		t.Fatalf("error should wrap ErrNotFound, got %v", err)
	}
}

func TestSaveValidationNilReport(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveValidation(context.Background(), "v", "", "lenient", nil); err == nil {
		t.Fatal("nil report should be rejected")
	}
}

func TestListValidationsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, video := range []string{"first", "second", "third"} {
		if _, err := store.SaveValidation(ctx, video, "", "strict", &validation.Report{VideoID: video}); err != nil {
			t.Fatalf("save %s: %v", video, err)
		}
	}
	runs, err := store.ListValidations(ctx, 2)
	if err != nil {
		t.Fatalf("ListValidations failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit of 2", len(runs))
	}
}

func TestLatestValidationForVideo(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.SaveValidation(ctx, "vid-x", "", "lenient", &validation.Report{VideoID: "vid-x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	run, err := store.LatestValidationForVideo(ctx, "vid-x")
	if err != nil {
		t.Fatalf("LatestValidationForVideo failed: %v", err)
	}
	if run.VideoID != "vid-x" {
		t.Errorf("VideoID = %q", run.VideoID)
	}
	if _, err := store.LatestValidationForVideo(ctx, "absent"); !errors.Is(err, analysis.ErrNotFound) {
		t.Fatalf("absent video should wrap ErrNotFound, got %v", err)
	}
}

func TestSaveAndListInsights(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"score": 0.8, "summary": "strong hook"}`)
	saved, err := store.SaveInsight(ctx, "vid-2", "hook_analysis", "some/model", payload)
	if err != nil {
		t.Fatalf("SaveInsight failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("insight run should have an ID")
	}

	runs, err := store.ListInsights(ctx, "vid-2")
	if err != nil {
		t.Fatalf("ListInsights failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d insights, want 1", len(runs))
	}
	if runs[0].Purpose != "hook_analysis" || runs[0].Model != "some/model" {
		t.Errorf("insight run = %+v", runs[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal(runs[0].Insight, &decoded); err != nil {
		t.Fatalf("insight payload not valid JSON: %v", err)
	}
	if decoded["summary"] != "strong hook" {
		t.Errorf("payload = %v", decoded)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsight.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := store.SaveValidation(context.Background(), "v", "", "lenient", &validation.Report{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListValidations(context.Background(), 10)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs after reopen, want 1", len(runs))
	}
}
