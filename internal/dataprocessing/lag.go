package dataprocessing

// BuildLags returns t sorted by (area, year) with a <col>_lag1 column
// appended for every existing column. The lag of a row is the value of the
// previous row of the same area, whatever the year gap; the first row of
// each area has all lags missing.
func BuildLags(t *Table) *Table {
	out := t.SortByKey()
	base := len(out.Columns)

	for c := 0; c < base; c++ {
		col := out.Columns[c]
		lagged := missingColumn(out.Len())
		for i := 1; i < out.Len(); i++ {
			if out.Keys[i-1].Area == out.Keys[i].Area {
				lagged[i] = col.Values[i-1]
			}
		}
		out.Columns = append(out.Columns, Column{Name: LagName(col.Name), Values: lagged})
	}

	return out
}
