package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/models"
)

const exportDefaultLimit = 1000

// CompletedCheckLister is implemented by the check store.
type CompletedCheckLister interface {
	ListCompletedChecks(ctx context.Context, limit int) ([]models.Check, error)
}

// ExportService renders completed checks as an xlsx report for
// administrators.
type ExportService struct {
	checks CompletedCheckLister
}

func NewExportService(checks CompletedCheckLister) *ExportService {
	return &ExportService{checks: checks}
}

// ExportCompletedChecks writes the newest completed checks into an
// xlsx workbook and returns its bytes.
func (es *ExportService) ExportCompletedChecks(ctx context.Context, limit int) ([]byte, int, error) {
	if limit <= 0 {
		limit = exportDefaultLimit
	}

	checks, err := es.checks.ListCompletedChecks(ctx, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list completed checks: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("failed to close export workbook", "error", err)
		}
	}()

	sheetName := "Completed Checks"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Check ID", "Document ID", "User ID", "Overall Similarity (%)",
		"Matched Documents", "AI Probability (%)", "AI Level",
		"Created At", "Completed At", "Notes",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, check := range checks {
		row := rowIdx + 2

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), check.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), check.DocumentID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), check.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), check.OverallSimilarity)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), check.TotalMatchedDocuments)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), check.AiProbability)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), check.AiLevel)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), check.CreatedAt.Format("2006-01-02 15:04:05"))
		if check.CompletedAt != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), check.CompletedAt.Format("2006-01-02 15:04:05"))
		}
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), check.Notes)
	}

	for i := range headers {
		col := fmt.Sprintf("%c:%c", 'A'+i, 'A'+i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	// Summary sheet with aggregate figures.
	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, 0, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	var totalSimilarity, totalAi float64
	highAi := 0
	for _, check := range checks {
		totalSimilarity += check.OverallSimilarity
		totalAi += check.AiProbability
		if check.AiLevel == models.AiLevelHigh {
			highAi++
		}
	}
	avgSimilarity, avgAi := 0.0, 0.0
	if len(checks) > 0 {
		avgSimilarity = totalSimilarity / float64(len(checks))
		avgAi = totalAi / float64(len(checks))
	}

	summaryRows := [][]interface{}{
		{"Export Date", time.Now().UTC().Format("2006-01-02 15:04:05")},
		{"Total Completed Checks", len(checks)},
		{"Average Similarity (%)", fmt.Sprintf("%.2f", avgSimilarity)},
		{"Average AI Probability (%)", fmt.Sprintf("%.2f", avgAi)},
		{"High AI Level Count", highAi},
	}
	for i, row := range summaryRows {
		for j, cell := range row {
			cellRef := fmt.Sprintf("%c%d", 'A'+j, i+1)
			f.SetCellValue(summarySheet, cellRef, cell)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), len(checks), nil
}
