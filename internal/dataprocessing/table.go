package dataprocessing

import (
	"fmt"
	"math"
	"sort"
)

// Key identifies one row of every table in the pipeline.
// Areas compare byte-wise: no case folding, no trimming.
type Key struct {
	Area string
	Year int
}

// Less orders keys by area, then year
func (k Key) Less(o Key) bool {
	if k.Area != o.Area {
		return k.Area < o.Area
	}
	return k.Year < o.Year
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Area, k.Year)
}

// Column is one named numeric series aligned with Table.Keys
type Column struct {
	Name   string
	Values []float64
}

// Table is a wide (area, year) keyed numeric table. Stages never mutate
// their input; they return a new Table.
type Table struct {
	Keys    []Key
	Columns []Column
}

// Missing returns the missing-value marker
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// NewTable creates a table with the given keys and no columns
func NewTable(keys []Key) *Table {
	k := make([]Key, len(keys))
	copy(k, keys)
	return &Table{Keys: k}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Keys)
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the first column with the given name, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the first column with the given name
func (t *Table) Column(name string) ([]float64, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	return t.Columns[i].Values, true
}

// AddColumn appends a column; values must align with Keys
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(t.Keys) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.Keys))
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
	return nil
}

// Row returns row i as a name to value map. With duplicate names the
// first column wins.
func (t *Table) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := row[c.Name]; ok {
			continue
		}
		row[c.Name] = c.Values[i]
	}
	return row
}

// Find returns the row index of key
func (t *Table) Find(key Key) (int, bool) {
	for i, k := range t.Keys {
		if k == key {
			return i, true
		}
	}
	return -1, false
}

// Areas returns the distinct areas, sorted
func (t *Table) Areas() []string {
	seen := make(map[string]bool)
	var areas []string
	for _, k := range t.Keys {
		if !seen[k.Area] {
			seen[k.Area] = true
			areas = append(areas, k.Area)
		}
	}
	sort.Strings(areas)
	return areas
}

// Years returns the distinct years, sorted
func (t *Table) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, k := range t.Keys {
		if !seen[k.Year] {
			seen[k.Year] = true
			years = append(years, k.Year)
		}
	}
	sort.Ints(years)
	return years
}

// IsSorted reports whether rows are in (area, year) order
func (t *Table) IsSorted() bool {
	return sort.SliceIsSorted(t.Keys, func(i, j int) bool {
		return t.Keys[i].Less(t.Keys[j])
	})
}

// SortByKey returns a copy with rows in (area, year) order.
// Equal keys keep their relative order.
func (t *Table) SortByKey() *Table {
	order := make([]int, len(t.Keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.Keys[order[a]].Less(t.Keys[order[b]])
	})
	return t.Select(order)
}

// Select returns a new table holding the given rows in the given order
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		Keys:    make([]Key, len(rows)),
		Columns: make([]Column, len(t.Columns)),
	}
	for i, r := range rows {
		out.Keys[i] = t.Keys[r]
	}
	for c, col := range t.Columns {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = col.Values[r]
		}
		out.Columns[c] = Column{Name: col.Name, Values: values}
	}
	return out
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := NewTable(t.Keys)
	out.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		values := make([]float64, len(c.Values))
		copy(values, c.Values)
		out.Columns[i] = Column{Name: c.Name, Values: values}
	}
	return out
}

// MissingCount returns the number of missing cells in the table
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if IsMissing(v) {
				n++
			}
		}
	}
	return n
}

func allMissing(values []float64) bool {
	for _, v := range values {
		if !IsMissing(v) {
			return false
		}
	}
	return true
}

func missingColumn(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = Missing()
	}
	return values
}
