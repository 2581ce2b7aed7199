package dataprocessing

import (
	"sort"

	apperrors "crimerisk/internal/errors"
)

// AggregateStats summarises one source's aggregation
type AggregateStats struct {
	Source           string
	RawRows          int
	FilteredRows     int
	Keys             int
	Categories       int
	UnparsableValues int
	Columns          int
	EmptyColumns     []string
	Collisions       []FeatureName
}

type groupKey struct {
	key      Key
	category string
}

// Aggregate turns a raw source into one row per (area, year). Measurements
// are summed per (area, year, subgroup) and the subgroup is pivoted into
// columns named through a ColumnSchema.
func Aggregate(raw *RawTable, spec SourceSpec) (*Table, AggregateStats, error) {
	stats := AggregateStats{Source: spec.Name, RawRows: len(raw.Rows)}

	if err := Validate(raw, spec); err != nil {
		return nil, stats, err
	}

	measurements := measurementColumns(raw, spec)
	measureIdx := make([]int, len(measurements))
	for i, m := range measurements {
		measureIdx[i] = raw.ColumnIndex(m)
	}

	areaIdx := raw.ColumnIndex(spec.AreaColumn)
	yearIdx := raw.ColumnIndex(spec.YearColumn)
	groupIdx := -1
	if spec.Grouped() {
		groupIdx = raw.ColumnIndex(spec.GroupColumn)
	}
	filterIdx := -1
	if spec.HasFilter() {
		filterIdx = raw.ColumnIndex(spec.Filter.Column)
	}

	sums := make(map[groupKey][]float64)
	keySet := make(map[Key]bool)
	categorySet := make(map[string]bool)

	for i, row := range raw.Rows {
		if blankRow(row) {
			continue
		}
		if filterIdx >= 0 && raw.Cell(row, filterIdx) != spec.Filter.Value {
			continue
		}
		stats.FilteredRows++

		line := i + 2 // 1-based, after the header
		area := raw.Cell(row, areaIdx)
		if area == "" {
			return nil, stats, apperrors.NewInvalidKeyError(spec.Name, line, spec.AreaColumn, area)
		}
		yearCell := raw.Cell(row, yearIdx)
		year, err := ParseYear(yearCell)
		if err != nil {
			return nil, stats, apperrors.NewInvalidKeyError(spec.Name, line, spec.YearColumn, yearCell)
		}

		gk := groupKey{key: Key{Area: area, Year: year}}
		if groupIdx >= 0 {
			gk.category = raw.Cell(row, groupIdx)
		}
		keySet[gk.key] = true
		categorySet[gk.category] = true

		acc, ok := sums[gk]
		if !ok {
			acc = missingColumn(len(measurements))
			sums[gk] = acc
		}

		for m, idx := range measureIdx {
			v, parsed := ParseMeasurement(raw.Cell(row, idx))
			if !parsed {
				stats.UnparsableValues++
			}
			if IsMissing(v) {
				continue
			}
			if IsMissing(acc[m]) {
				acc[m] = v
			} else {
				acc[m] += v
			}
		}
	}

	categories := make([]string, 0, len(categorySet))
	for c := range categorySet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	pairs := make([]FeatureName, 0, len(measurements)*len(categories))
	for _, m := range measurements {
		for _, c := range categories {
			pairs = append(pairs, FeatureName{Measurement: m, Category: c})
		}
	}
	schema := NewColumnSchema(pairs)
	stats.Collisions = schema.Dropped()

	keys := make([]Key, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	rowOf := make(map[Key]int, len(keys))
	for i, k := range keys {
		rowOf[k] = i
	}

	measureOf := make(map[string]int, len(measurements))
	for i, m := range measurements {
		measureOf[m] = i
	}

	table := NewTable(keys)
	for _, pair := range schema.Columns() {
		name, _ := schema.Lookup(pair)
		m := measureOf[pair.Measurement]
		values := missingColumn(len(keys))
		for _, k := range keys {
			if acc, ok := sums[groupKey{key: k, category: pair.Category}]; ok {
				values[rowOf[k]] = acc[m]
			}
		}
		if allMissing(values) {
			stats.EmptyColumns = append(stats.EmptyColumns, name)
			continue
		}
		table.Columns = append(table.Columns, Column{Name: name, Values: values})
	}

	stats.Keys = table.Len()
	stats.Categories = len(categories)
	stats.Columns = table.Width()
	return table, stats, nil
}
