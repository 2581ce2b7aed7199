package exporter

import (
	"fmt"
	"strconv"

	"crimerisk/internal/dataprocessing"
	"crimerisk/pkg/contracts/domain"
)

// Key column headers of every exported table
const (
	AreaHeader = "Area_Name"
	YearHeader = "Year"
)

// TableHeaders returns the header row for t: keys first, then columns in
// table order
func TableHeaders(t *dataprocessing.Table) []string {
	return append([]string{AreaHeader, YearHeader}, t.Names()...)
}

// TableRecord renders row i of t
func TableRecord(t *dataprocessing.Table, i int) []string {
	record := make([]string, 0, t.Width()+2)
	record = append(record, t.Keys[i].Area, strconv.Itoa(t.Keys[i].Year))
	for _, c := range t.Columns {
		record = append(record, formatValue(c.Values[i]))
	}
	return record
}

// WriteTable streams t to a CSV file and returns the resolved path
func (w *CSVWriter) WriteTable(filePath string, t *dataprocessing.Table) (string, error) {
	stream, err := w.CreateStreamWriter(filePath, TableHeaders(t))
	if err != nil {
		return "", err
	}

	for i := range t.Keys {
		if err := stream.WriteRecord(TableRecord(t, i)); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write row %s: %w", t.Keys[i], err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.Path(), nil
}

// WriteImportances writes a ranked feature-importance report
func (w *CSVWriter) WriteImportances(filePath string, importances []domain.FeatureImportance) (string, error) {
	records := make([][]string, len(importances))
	for i, fi := range importances {
		records[i] = []string{strconv.Itoa(i + 1), fi.Name, formatFloat(fi.Importance, 6)}
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers: []string{"Rank", "Feature", "Importance"},
		Records: records,
	})
}
