package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGapFiller_ForwardThenBackward(t *testing.T) {
	in := tableOf(keys("A", 2001, "A", 2002, "A", 2003, "A", 2004),
		col("x", nan, 2, nan, 4),
		col("y", nan, nan, 3, nan))

	out, stats := NewGapFiller().FillWithStats(in)

	assertColumn(t, out, "x", 2, 2, 2, 4)
	assertColumn(t, out, "y", 3, 3, 3, 3)
	assert.Equal(t, 5, stats.MissingBefore)
	assert.Equal(t, 2, stats.ForwardFilled)
	assert.Equal(t, 3, stats.BackwardFilled)
	assert.Equal(t, 0, stats.MissingAfter)
	assert.Equal(t, 1, stats.AreasProcessed)
}

func TestGapFiller_NeverCrossesAreas(t *testing.T) {
	in := tableOf(keys("A", 2001, "A", 2002, "B", 2001, "B", 2002),
		col("x", 1, nan, nan, nan),
		col("y", nan, nan, nan, 5))

	out := NewGapFiller().Fill(in)

	assertColumn(t, out, "x", 1, 1, nan, nan)
	assertColumn(t, out, "y", nan, nan, 5, 5)
}

func TestGapFiller_SortsUnorderedInput(t *testing.T) {
	in := tableOf(keys("A", 2003, "A", 2001, "A", 2002),
		col("x", nan, 1, nan))

	out := NewGapFiller().Fill(in)

	assert.Equal(t, keys("A", 2001, "A", 2002, "A", 2003), out.Keys)
	assertColumn(t, out, "x", 1, 1, 1)
	assertColumn(t, in, "x", nan, 1, nan)
}

func TestGapFiller_Idempotent(t *testing.T) {
	in := tableOf(keys("A", 2001, "A", 2002, "B", 2005, "B", 2007, "C", 2001),
		col("x", nan, 2, 3, nan, nan),
		col("y", 1, nan, nan, nan, nan))

	filler := NewGapFiller()
	once := filler.Fill(in)
	twice, stats := filler.FillWithStats(once)

	assert.Equal(t, once.Keys, twice.Keys)
	for _, c := range once.Columns {
		assertColumn(t, twice, c.Name, c.Values...)
	}
	assert.Zero(t, stats.ForwardFilled+stats.BackwardFilled)
}

func TestGapFiller_ObservedValuesUnchanged(t *testing.T) {
	in := tableOf(keys("A", 2001, "A", 2002, "A", 2003), col("x", 1, nan, 3))
	out := NewGapFiller().Fill(in)
	assertColumn(t, out, "x", 1, 1, 3)
}

func TestGapFiller_EmptyTable(t *testing.T) {
	out, stats := NewGapFiller().FillWithStats(&Table{})
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, stats.AreasProcessed)
}
