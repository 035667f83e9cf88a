package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"plagiarism-check-platform/models"
)

type fakeCompletedLister struct {
	checks   []models.Check
	gotLimit int
}

func (f *fakeCompletedLister) ListCompletedChecks(_ context.Context, limit int) ([]models.Check, error) {
	f.gotLimit = limit
	return f.checks, nil
}

func TestExportCompletedChecks(t *testing.T) {
	completedAt := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
	lister := &fakeCompletedLister{
		checks: []models.Check{
			{
				ID:                    "check-1",
				DocumentID:            "doc-1",
				UserID:                "user-1",
				Status:                models.CheckStatusCompleted,
				OverallSimilarity:     46.15,
				TotalMatchedDocuments: 1,
				AiProbability:         32.5,
				AiLevel:               models.AiLevelLow,
				CreatedAt:             completedAt.Add(-time.Minute),
				CompletedAt:           &completedAt,
			},
		},
	}

	es := NewExportService(lister)
	data, count, err := es.ExportCompletedChecks(context.Background(), 50)
	if err != nil {
		t.Fatalf("ExportCompletedChecks: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if lister.gotLimit != 50 {
		t.Fatalf("limit passed to store = %d, want 50", lister.gotLimit)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Completed Checks", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "check-1" {
		t.Fatalf("A2 = %q, want check id", got)
	}
}

func TestExportDefaultsLimit(t *testing.T) {
	lister := &fakeCompletedLister{}
	es := NewExportService(lister)

	if _, count, err := es.ExportCompletedChecks(context.Background(), 0); err != nil || count != 0 {
		t.Fatalf("empty export: count=%d err=%v", count, err)
	}
	if lister.gotLimit != exportDefaultLimit {
		t.Fatalf("default limit = %d, want %d", lister.gotLimit, exportDefaultLimit)
	}
}
