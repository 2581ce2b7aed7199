package dataprocessing

// GapFiller fills missing cells within each area's own history
type GapFiller struct{}

// NewGapFiller creates a new gap filler
func NewGapFiller() *GapFiller {
	return &GapFiller{}
}

// GapFillStatistics represents gap-fill operation statistics
type GapFillStatistics struct {
	TotalCells     int
	MissingBefore  int
	ForwardFilled  int
	BackwardFilled int
	MissingAfter   int
	AreasProcessed int
}

// Fill returns a copy of t sorted by (area, year) in which every missing
// cell takes the latest earlier observation of the same area and column,
// or failing that the earliest later one. Values never cross areas; a
// column an area never observed stays missing. Filling twice changes nothing.
func (g *GapFiller) Fill(t *Table) *Table {
	filled, _ := g.FillWithStats(t)
	return filled
}

// FillWithStats performs the fill and returns statistics
func (g *GapFiller) FillWithStats(t *Table) (*Table, GapFillStatistics) {
	out := t.SortByKey()
	runs := areaRuns(out.Keys)

	stats := GapFillStatistics{
		TotalCells:     out.Len() * out.Width(),
		MissingBefore:  out.MissingCount(),
		AreasProcessed: len(runs),
	}

	for _, col := range out.Columns {
		for _, run := range runs {
			values := col.Values[run.start:run.end]
			stats.ForwardFilled += forwardFill(values)
			stats.BackwardFilled += backwardFill(values)
		}
	}

	stats.MissingAfter = out.MissingCount()
	return out, stats
}

// areaRun is a half-open row range sharing one area in a sorted table
type areaRun struct {
	start, end int
}

func areaRuns(keys []Key) []areaRun {
	var runs []areaRun
	for i := 0; i < len(keys); {
		j := i + 1
		for j < len(keys) && keys[j].Area == keys[i].Area {
			j++
		}
		runs = append(runs, areaRun{start: i, end: j})
		i = j
	}
	return runs
}

func forwardFill(values []float64) int {
	filled := 0
	last := Missing()
	for i, v := range values {
		if IsMissing(v) {
			if !IsMissing(last) {
				values[i] = last
				filled++
			}
			continue
		}
		last = v
	}
	return filled
}

func backwardFill(values []float64) int {
	filled := 0
	next := Missing()
	for i := len(values) - 1; i >= 0; i-- {
		if IsMissing(values[i]) {
			if !IsMissing(next) {
				values[i] = next
				filled++
			}
			continue
		}
		next = values[i]
	}
	return filled
}
