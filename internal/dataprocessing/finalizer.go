package dataprocessing

import (
	"fmt"

	apperrors "crimerisk/internal/errors"
)

// FinalizeStats summarises the training-set clean-up
type FinalizeStats struct {
	InputRows         int
	OutputRows        int
	DuplicateColumns  []string
	EmptyColumns      []string
	MissingTargetRows int
}

// Finalize produces the training set: duplicate-named columns are removed
// (first kept), entirely missing columns are removed, then rows whose
// target is missing are removed. Rows missing only predictors stay.
func Finalize(t *Table, target string) (*Table, error) {
	out, _, err := FinalizeWithStats(t, target)
	return out, err
}

// FinalizeWithStats is Finalize with a report of what was removed
func FinalizeWithStats(t *Table, target string) (*Table, FinalizeStats, error) {
	stats := FinalizeStats{InputRows: t.Len()}

	if t.Index(target) < 0 {
		return nil, stats, apperrors.NewAppError(apperrors.ErrTypeSchema,
			fmt.Sprintf("target column %q not present", target), apperrors.ErrSchemaMismatch).
			WithContext("column", target)
	}

	seen := make(map[string]bool, t.Width())
	var columns []Column
	for _, col := range t.Columns {
		if seen[col.Name] {
			stats.DuplicateColumns = append(stats.DuplicateColumns, col.Name)
			continue
		}
		seen[col.Name] = true
		if col.Name != target && allMissing(col.Values) {
			stats.EmptyColumns = append(stats.EmptyColumns, col.Name)
			continue
		}
		columns = append(columns, col)
	}

	pruned := &Table{Keys: t.Keys, Columns: columns}
	targetValues, _ := pruned.Column(target)

	rows := make([]int, 0, t.Len())
	for i, v := range targetValues {
		if IsMissing(v) {
			stats.MissingTargetRows++
			continue
		}
		rows = append(rows, i)
	}

	out := pruned.Select(rows)
	stats.OutputRows = out.Len()
	return out, stats, nil
}

// FeatureColumns returns every column name except target, in table order
func FeatureColumns(t *Table, target string) []string {
	names := make([]string, 0, t.Width())
	for _, c := range t.Columns {
		if c.Name != target {
			names = append(names, c.Name)
		}
	}
	return names
}
