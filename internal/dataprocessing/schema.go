package dataprocessing

import "strings"

// LagSuffix marks a one-step lag column
const LagSuffix = "_lag1"

// LagName returns the name of the lag column derived from col
func LagName(col string) string {
	return col + LagSuffix
}

// FeatureName is one (measurement, category) pair produced by pivoting a
// grouped source. An empty Category means the source has no subgroup.
type FeatureName struct {
	Measurement string
	Category    string
}

// Name returns the generated column name: the measurement, an underscore
// and the normalised category, with runs of underscores collapsed.
func (f FeatureName) Name() string {
	if f.Category == "" {
		return f.Measurement
	}
	return collapseUnderscores(f.Measurement + "_" + normalizeCategory(f.Category))
}

func normalizeCategory(category string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' {
			return '_'
		}
		return r
	}, category)
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ColumnSchema maps (measurement, category) pairs to stable column names.
// It is built once per source; when two pairs normalise to the same name
// the first keeps it and the later one is dropped.
type ColumnSchema struct {
	pairs   []FeatureName
	names   []string
	lookup  map[FeatureName]string
	dropped []FeatureName
}

// NewColumnSchema assigns names to pairs in the given order
func NewColumnSchema(pairs []FeatureName) *ColumnSchema {
	s := &ColumnSchema{lookup: make(map[FeatureName]string, len(pairs))}
	taken := make(map[string]bool, len(pairs))

	for _, p := range pairs {
		if _, dup := s.lookup[p]; dup {
			continue
		}
		name := p.Name()
		if taken[name] {
			s.dropped = append(s.dropped, p)
			continue
		}
		taken[name] = true
		s.lookup[p] = name
		s.pairs = append(s.pairs, p)
		s.names = append(s.names, name)
	}

	return s
}

// Columns returns the surviving pairs in column order
func (s *ColumnSchema) Columns() []FeatureName {
	return append([]FeatureName(nil), s.pairs...)
}

// Names returns the generated names in column order
func (s *ColumnSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Dropped returns the pairs that collided with an earlier name
func (s *ColumnSchema) Dropped() []FeatureName {
	return append([]FeatureName(nil), s.dropped...)
}

// Lookup returns the column name of a pair; false for unknown or dropped pairs
func (s *ColumnSchema) Lookup(p FeatureName) (string, bool) {
	name, ok := s.lookup[p]
	return name, ok
}

// Len returns the number of surviving columns
func (s *ColumnSchema) Len() int {
	return len(s.pairs)
}
