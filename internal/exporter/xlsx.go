package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"crimerisk/internal/dataprocessing"
)

// DefaultSheet is the worksheet exported tables are written to
const DefaultSheet = "Dataset"

// WriteTableXLSX writes t to a single-sheet workbook with a frozen header
// row. Missing cells are left blank.
func (w *CSVWriter) WriteTableXLSX(filePath string, t *dataprocessing.Table) (string, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("row_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DefaultSheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return "", fmt.Errorf("failed to open sheet stream: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("failed to freeze header: %w", err)
	}

	headers := TableHeaders(t)
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, key := range t.Keys {
		row := make([]interface{}, 0, len(headers))
		row = append(row, key.Area, key.Year)
		for _, c := range t.Columns {
			if v := c.Values[i]; !dataprocessing.IsMissing(v) {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return "", fmt.Errorf("failed to write row %s: %w", key, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return fullPath, nil
}
