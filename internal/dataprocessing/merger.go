package dataprocessing

import (
	"fmt"
	"math"
	"sort"
)

// NamedTable is an aggregated source awaiting the merge
type NamedTable struct {
	Name  string
	Table *Table
}

// MergeStats summarises an outer join
type MergeStats struct {
	Sources int
	Keys    int
	Columns int
	// Renamed maps "<source>.<column>" to the name used in the merged table
	Renamed map[string]string
}

// Merge outer-joins the sources on (area, year)
func Merge(sources ...NamedTable) (*Table, error) {
	t, _, err := MergeWithStats(sources...)
	return t, err
}

// MergeWithStats outer-joins the sources on (area, year). Every key of any
// input appears exactly once and rows come out sorted, so the result does
// not depend on input order beyond column naming. Cells a source does not
// cover are missing. A column whose name is already taken by an earlier
// source is renamed to <name>_<source>.
func MergeWithStats(sources ...NamedTable) (*Table, MergeStats, error) {
	stats := MergeStats{Sources: len(sources), Renamed: make(map[string]string)}
	if len(sources) == 0 {
		return nil, stats, fmt.Errorf("merge requires at least one source")
	}

	keySet := make(map[Key]bool)
	for _, src := range sources {
		if src.Table == nil {
			return nil, stats, fmt.Errorf("source %q has no table", src.Name)
		}
		for _, k := range src.Table.Keys {
			keySet[k] = true
		}
	}

	keys := make([]Key, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	rowOf := make(map[Key]int, len(keys))
	for i, k := range keys {
		rowOf[k] = i
	}

	merged := NewTable(keys)
	taken := make(map[string]bool)

	for _, src := range sources {
		target := make([]int, src.Table.Len())
		claimed := make(map[Key]bool, src.Table.Len())
		for i, k := range src.Table.Keys {
			if claimed[k] {
				target[i] = -1
				continue
			}
			claimed[k] = true
			target[i] = rowOf[k]
		}

		for _, col := range src.Table.Columns {
			name := uniqueName(col.Name, src.Name, taken)
			taken[name] = true
			if name != col.Name {
				stats.Renamed[src.Name+"."+col.Name] = name
			}

			values := missingColumn(len(keys))
			for i, v := range col.Values {
				if target[i] < 0 || math.IsInf(v, 0) {
					continue
				}
				values[target[i]] = v
			}
			merged.Columns = append(merged.Columns, Column{Name: name, Values: values})
		}
	}

	stats.Keys = merged.Len()
	stats.Columns = merged.Width()
	return merged, stats, nil
}

func uniqueName(name, source string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	candidate := name + "_" + source
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%s_%d", name, source, n)
	}
	return candidate
}
