package regression

import (
	"fmt"
	"math"
	"math/rand"

	apperrors "crimerisk/internal/errors"
)

// Split holds row indices of a train/test partition
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with seed and holds out
// ceil(n*testFraction) of them. Both partitions must be non-empty.
func TrainTestSplit(n int, testFraction float64, seed int64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction %v outside (0, 1)", testFraction)
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	nTrain := n - nTest
	if n == 0 || nTest < 1 || nTrain < 1 {
		return Split{}, apperrors.NewInsufficientDataError(n,
			fmt.Sprintf("cannot split into %d train and %d test rows", nTrain, nTest))
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Split{
		Test:  perm[:nTest],
		Train: perm[nTest:],
	}, nil
}

// Rows selects the given rows of X
func Rows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, r := range idx {
		out[i] = X[r]
	}
	return out
}

// Values selects the given entries of y
func Values(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
