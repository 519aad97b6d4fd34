package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/easy-applier/internal/jobs"
)

const (
	SheetProcessed      = "Processed"
	SheetUnprocessed    = "Unprocessed"
	SheetBlacklisted    = "Blacklisted"
	SheetAlreadyApplied = "Already applied"
)

var (
	resultHeader  = []any{"ID", "Title", "Company", "Steps", "Error", "Finished at"}
	excludeHeader = []any{"ID", "Title", "Company", "State", "Title blacklisted", "Company blacklisted"}
)

// WriteXLSX writes one sheet per bucket. The .xlsx extension is added when missing.
func (r *Report) WriteXLSX(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	if err := f.SetSheetName("Sheet1", SheetProcessed); err != nil {
		return "", err
	}
	for _, name := range []string{SheetUnprocessed, SheetBlacklisted, SheetAlreadyApplied} {
		if _, err := f.NewSheet(name); err != nil {
			return "", err
		}
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetProcessed, resultHeader, resultRows(r.Processed)},
		{SheetUnprocessed, resultHeader, resultRows(r.Unprocessed)},
		{SheetBlacklisted, excludeHeader, excludeRows(r.Blacklisted)},
		{SheetAlreadyApplied, excludeHeader, excludeRows(r.AlreadyApplied)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, header, s.header, s.rows); err != nil {
			return "", fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func writeSheet(f *excelize.File, name string, style int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return err
	}
	if err := f.SetColWidth(name, "B", "C", 30); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func resultRows(results []*jobs.Result) [][]any {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{
			r.Posting.ID, r.Posting.Title, r.Posting.Company, r.Steps, r.Error, r.FinishAt.Format(time.RFC3339),
		})
	}
	return rows
}

func excludeRows(postings []*jobs.ClassifiedPosting) [][]any {
	rows := make([][]any, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, []any{
			p.ID, p.Title, p.Company, string(p.PriorState), p.TitleBlacklisted, p.CompanyBlacklisted,
		})
	}
	return rows
}
