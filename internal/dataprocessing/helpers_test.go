package dataprocessing

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func col(name string, values ...float64) Column {
	return Column{Name: name, Values: values}
}

func keys(pairs ...interface{}) []Key {
	out := make([]Key, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Key{Area: pairs[i].(string), Year: pairs[i+1].(int)})
	}
	return out
}

func tableOf(k []Key, cols ...Column) *Table {
	return &Table{Keys: k, Columns: cols}
}

// assertValues compares float slices treating NaN as equal to NaN
func assertValues(t *testing.T, want, got []float64, msgAndArgs ...interface{}) {
	t.Helper()
	require.Len(t, got, len(want), msgAndArgs...)
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want missing, got %v", i, got[i])
			continue
		}
		assert.Equal(t, want[i], got[i], "index %d", i)
	}
}

func assertColumn(t *testing.T, table *Table, name string, want ...float64) {
	t.Helper()
	got, ok := table.Column(name)
	require.True(t, ok, "column %s not found in %v", name, table.Names())
	assertValues(t, want, got, "column %s", name)
}

func rawCSV(t *testing.T, source, content string) *RawTable {
	t.Helper()
	raw, err := ReadCSV(source, strings.NewReader(strings.TrimLeft(content, "\n")))
	require.NoError(t, err)
	return raw
}
