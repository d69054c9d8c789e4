package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter mirrors the panel and metadata CSVs into a single Excel
// workbook, which is what the dataset's downstream notebooks open.
type WorkbookWriter struct {
	dir    string
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer rooted at dir.
func NewWorkbookWriter(dir string, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{dir: dir, logger: logger}
}

// Sheet is one worksheet of tabular data.
type Sheet struct {
	Name    string
	Headers []string
	Records [][]string
}

// WriteWorkbook writes the sheets to filename inside the writer's
// directory. Sheets without headers are skipped.
func (w *WorkbookWriter) WriteWorkbook(filename string, sheets []Sheet) error {
	fullPath := filepath.Join(w.dir, filename)

	f := excelize.NewFile()
	defer f.Close()

	written := 0
	for _, sheet := range sheets {
		if len(sheet.Headers) == 0 {
			continue
		}
		index, err := f.NewSheet(sheet.Name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
		if written == 0 {
			f.SetActiveSheet(index)
		}

		if err := writeRow(f, sheet.Name, 1, sheet.Headers); err != nil {
			return err
		}
		for i, record := range sheet.Records {
			if err := writeRow(f, sheet.Name, i+2, record); err != nil {
				return err
			}
		}
		written++
	}

	if written == 0 {
		w.logger.Debug("no sheets to write, skipping workbook",
			slog.String("path", fullPath))
		return nil
	}

	// Drop excelize's default sheet unless a sheet reused its name.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("wrote workbook",
		slog.String("path", fullPath),
		slog.Int("sheets", written))
	return nil
}

// writeRow sets one row of cells. Numeric-looking values are written as
// numbers so spreadsheet formulas work on them.
func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if number, convErr := strconv.ParseFloat(value, 64); convErr == nil && value != "" {
			err = f.SetCellValue(sheet, cell, number)
		} else {
			err = f.SetCellValue(sheet, cell, value)
		}
		if err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
