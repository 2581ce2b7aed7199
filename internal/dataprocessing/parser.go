package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "crimerisk/internal/errors"
)

// Filter keeps only rows whose Column equals Value verbatim
type Filter struct {
	Column string
	Value  string
}

// SourceSpec describes how one raw file maps onto (area, year) rows
type SourceSpec struct {
	Name        string
	Path        string
	Sheet       string
	AreaColumn  string
	YearColumn  string
	GroupColumn string
	Filter      Filter
	// Measurements lists the numeric columns; empty means every column
	// that is not a key, group or filter column.
	Measurements []string
}

// Grouped reports whether the source carries a subgroup dimension to pivot
func (s SourceSpec) Grouped() bool {
	return s.GroupColumn != ""
}

// HasFilter reports whether rows are restricted by a column value
func (s SourceSpec) HasFilter() bool {
	return s.Filter.Column != ""
}

// RawTable is a source file as text cells, before any typing
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of the first header cell equal to name, or -1
func (r *RawTable) ColumnIndex(name string) int {
	for i, h := range r.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at idx, or "" for ragged rows
func (r *RawTable) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadSource reads the file named by spec.Path. CSV and XLSX are supported.
func LoadSource(spec SourceSpec) (*RawTable, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(spec.Path)) {
	case ".csv", ".txt":
		records, err = readCSV(spec.Path)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(spec.Path, spec.Sheet)
	default:
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("source %q: unsupported file type %s", spec.Name, spec.Path), nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("source %q: failed to read %s", spec.Name, spec.Path), err)
	}

	return newRawTable(spec.Name, records)
}

// ReadCSV parses CSV content from r into a RawTable
func ReadCSV(source string, r io.Reader) (*RawTable, error) {
	records, err := parseCSV(r)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("source %q: malformed csv", source), err)
	}
	return newRawTable(source, records)
}

func newRawTable(source string, records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeSchema,
			fmt.Sprintf("source %q has no header row", source), apperrors.ErrSchemaMismatch)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	return &RawTable{
		Source: source,
		Header: header,
		Rows:   records[1:],
	}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Validate checks that every column the spec relies on is present
func Validate(raw *RawTable, spec SourceSpec) error {
	required := []string{spec.AreaColumn, spec.YearColumn}
	if spec.Grouped() {
		required = append(required, spec.GroupColumn)
	}
	if spec.HasFilter() {
		required = append(required, spec.Filter.Column)
	}
	required = append(required, spec.Measurements...)

	for _, col := range required {
		if col == "" {
			return apperrors.NewAppError(apperrors.ErrTypeSchema,
				fmt.Sprintf("source %q: key column not configured", spec.Name), apperrors.ErrSchemaMismatch)
		}
		if raw.ColumnIndex(col) < 0 {
			return apperrors.NewSchemaError(spec.Name, col)
		}
	}
	return nil
}

// measurementColumns resolves the numeric columns of a source
func measurementColumns(raw *RawTable, spec SourceSpec) []string {
	if len(spec.Measurements) > 0 {
		return dedupeStrings(spec.Measurements)
	}

	reserved := map[string]bool{
		spec.AreaColumn:    true,
		spec.YearColumn:    true,
		spec.GroupColumn:   true,
		spec.Filter.Column: true,
		"":                 true,
	}

	var cols []string
	for _, h := range raw.Header {
		if !reserved[h] {
			cols = append(cols, h)
		}
	}
	return dedupeStrings(cols)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ParseYear parses a year cell. Integral decimals such as "2005.0" are accepted.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// ParseMeasurement coerces a cell to a number. The second result is false
// when a non-empty cell could not be parsed; both empty and unparsable
// cells yield the missing marker.
func ParseMeasurement(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing(), true
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(f, 0) {
		return Missing(), false
	}
	return f, true
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
