package regression

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"crimerisk/pkg/contracts/domain"
)

// MeanAbsoluteError returns the mean of |yTrue - yPred|
func MeanAbsoluteError(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("length mismatch: %d targets, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("no samples")
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// RankImportances pairs names with importances sorted descending and keeps
// the top k. Ties keep feature order. k <= 0 keeps every feature.
func RankImportances(names []string, importances []float64, k int) []domain.FeatureImportance {
	n := len(names)
	if len(importances) < n {
		n = len(importances)
	}

	ranked := make([]domain.FeatureImportance, n)
	for i := 0; i < n; i++ {
		ranked[i] = domain.FeatureImportance{Name: names[i], Importance: importances[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
