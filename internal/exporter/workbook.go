package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"owidreport/internal/config"
	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetCleaned  = "Cleaned"
	SheetSnapshot = "Snapshot"
	SheetSummary  = "Summary"
	SheetMissing  = "Missing"
)

// WorkbookData holds the tables of one report workbook; nil parts get an
// empty sheet with headers only.
type WorkbookData struct {
	Cleaned   *domain.Dataset
	Snapshot  []domain.Snapshot
	Summaries []domain.EntitySummary
	Missing   domain.MissingReport
}

// WorkbookExporter writes covid_report.xlsx
type WorkbookExporter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(paths *config.Paths, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{paths: paths, logger: logger}
}

// Export builds the workbook and saves it in the exports directory
func (e *WorkbookExporter) Export(data WorkbookData) (string, error) {
	path := e.paths.GetExportPath(config.ExportWorkbook)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create directory", err)
	}

	cleaned := data.Cleaned
	if cleaned == nil {
		cleaned = &domain.Dataset{}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		t    table
	}{
		{SheetCleaned, datasetTable(cleaned)},
		{SheetSnapshot, snapshotTable(data.Snapshot)},
		{SheetSummary, summaryTable(data.Summaries)},
		{SheetMissing, missingTable(data.Missing)},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2DCDB"}, Pattern: 1},
	})
	if err != nil {
		return "", apperrors.NewStorageError("failed to create header style", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return "", apperrors.NewStorageError("failed to create date style", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return "", apperrors.NewStorageError("failed to rename sheet", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to add sheet %s", s.name), err)
		}
		if err := writeSheet(f, s.name, s.t, headerStyle, dateStyle); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("failed to write sheet %s", s.name), err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to save %s", path), err)
	}

	e.logger.Info("Workbook exported",
		slog.String("file", path),
		slog.Int("cleaned_rows", cleaned.Len()),
		slog.Int("snapshot_rows", len(data.Snapshot)),
		slog.Int("summary_rows", len(data.Summaries)))
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, t table, headerStyle, dateStyle int) error {
	header := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(t.headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _, _ := excelize.SplitCellName(last)
		if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return err
		}
	}

	for r, row := range t.rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = xlCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		for c, v := range row {
			if tv, ok := v.(time.Time); ok && !tv.IsZero() {
				name, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellStyle(sheet, name, name, dateStyle); err != nil {
					return err
				}
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func xlCell(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val
	}
	return v
}
