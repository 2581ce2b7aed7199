package regression

import (
	"fmt"
	"math"
	"sort"
)

// MedianImputer replaces missing (NaN) cells with the column median seen at fit time
type MedianImputer struct {
	Statistics []float64
}

// NewMedianImputer creates an unfitted imputer
func NewMedianImputer() *MedianImputer {
	return &MedianImputer{}
}

// Fit computes per-column medians of X ignoring missing cells. An even
// number of observations yields the mean of the two middle values; a
// column without observations gets 0.
func (m *MedianImputer) Fit(X [][]float64) error {
	width, err := matrixWidth(X)
	if err != nil {
		return err
	}

	stats := make([]float64, width)
	column := make([]float64, 0, len(X))
	for j := 0; j < width; j++ {
		column = column[:0]
		for _, row := range X {
			if !math.IsNaN(row[j]) {
				column = append(column, row[j])
			}
		}
		stats[j] = median(column)
	}

	m.Statistics = stats
	return nil
}

// Width returns the number of columns the imputer was fitted on
func (m *MedianImputer) Width() int {
	return len(m.Statistics)
}

// Transform returns a copy of X with missing cells imputed
func (m *MedianImputer) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		imputed, err := m.TransformRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = imputed
	}
	return out, nil
}

// TransformRow returns a copy of x with missing cells imputed
func (m *MedianImputer) TransformRow(x []float64) ([]float64, error) {
	if m.Statistics == nil {
		return nil, fmt.Errorf("imputer is not fitted")
	}
	if len(x) != len(m.Statistics) {
		return nil, fmt.Errorf("row has %d features, imputer expects %d", len(x), len(m.Statistics))
	}

	out := make([]float64, len(x))
	for j, v := range x {
		if math.IsNaN(v) {
			v = m.Statistics[j]
		}
		out[j] = v
	}
	return out, nil
}

// FitTransform fits on X and returns the imputed copy
func (m *MedianImputer) FitTransform(X [][]float64) ([][]float64, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func matrixWidth(X [][]float64) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("matrix has no rows")
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), width)
		}
	}
	return width, nil
}
