package regression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crimerisk/internal/errors"
)

func linearData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i), float64(i % 2)}
		y[i] = 3 * float64(i)
	}
	return X, y
}

func TestForestDeterministicAcrossWorkers(t *testing.T) {
	X, y := linearData(30)

	var predictions [][]float64
	var importances [][]float64
	for _, workers := range []int{1, 4, 16} {
		cfg := DefaultForestConfig()
		cfg.NEstimators = 20
		cfg.Workers = workers

		forest := NewForest(cfg)
		require.NoError(t, forest.Fit(context.Background(), X, y))
		predictions = append(predictions, forest.Predict(X))
		importances = append(importances, forest.FeatureImportances())
	}

	for i := 1; i < len(predictions); i++ {
		assert.Equal(t, predictions[0], predictions[i])
		assert.Equal(t, importances[0], importances[i])
	}
}

func TestForestFitAndPredict(t *testing.T) {
	X, y := linearData(40)

	cfg := DefaultForestConfig()
	cfg.NEstimators = 25
	forest := NewForest(cfg)
	require.NoError(t, forest.Fit(context.Background(), X, y))

	assert.True(t, forest.Fitted())
	assert.Equal(t, 2, forest.NFeatures)
	assert.Len(t, forest.Trees, 25)

	preds := forest.Predict(X)
	mae, err := MeanAbsoluteError(y, preds)
	require.NoError(t, err)
	assert.Less(t, mae, 5.0)

	imp := forest.FeatureImportances()
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
	assert.Greater(t, imp[0], imp[1])
}

func TestForestSeedChangesModel(t *testing.T) {
	X, y := linearData(30)

	a := NewForest(ForestConfig{NEstimators: 5, Seed: 1, Bootstrap: true})
	b := NewForest(ForestConfig{NEstimators: 5, Seed: 2, Bootstrap: true})
	require.NoError(t, a.Fit(context.Background(), X, y))
	require.NoError(t, b.Fit(context.Background(), X, y))

	assert.NotEqual(t, a.Predict(X), b.Predict(X))
}

func TestForestWithoutBootstrapMatchesSingleTree(t *testing.T) {
	X, y := linearData(10)

	forest := NewForest(ForestConfig{NEstimators: 3, Tree: DefaultTreeParams()})
	require.NoError(t, forest.Fit(context.Background(), X, y))

	for i, row := range X {
		assert.Equal(t, y[i], forest.PredictRow(row))
	}
}

func TestForestFitErrors(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		err := NewForest(DefaultForestConfig()).Fit(context.Background(), nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTrainingData)
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := NewForest(DefaultForestConfig()).Fit(context.Background(), [][]float64{{1}}, []float64{1, 2})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		X, y := linearData(10)
		forest := NewForest(DefaultForestConfig())
		err := forest.Fit(ctx, X, y)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, forest.Fitted())
	})
}

func TestNewForestDefaultsEstimators(t *testing.T) {
	forest := NewForest(ForestConfig{})
	assert.Equal(t, 100, forest.Config.NEstimators)
}
