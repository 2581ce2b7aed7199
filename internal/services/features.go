package services

import (
	"crimerisk/internal/dataprocessing"
)

// Reindex orders row by features. Features absent from row become 0;
// present missing values stay missing for the imputer.
func Reindex(row map[string]float64, features []string) []float64 {
	out := make([]float64, len(features))
	for i, name := range features {
		if v, ok := row[name]; ok {
			out[i] = v
		}
	}
	return out
}

// FeatureMatrix reindexes every row of t to features
func FeatureMatrix(t *dataprocessing.Table, features []string) [][]float64 {
	cols := make([][]float64, len(features))
	for j, name := range features {
		if values, ok := t.Column(name); ok {
			cols[j] = values
		}
	}

	X := make([][]float64, t.Len())
	for i := range X {
		row := make([]float64, len(features))
		for j, values := range cols {
			if values != nil {
				row[j] = values[i]
			}
		}
		X[i] = row
	}
	return X
}
