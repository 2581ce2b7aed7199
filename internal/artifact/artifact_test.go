package artifact

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crimerisk/internal/errors"
	"crimerisk/internal/regression"
)

func fittedBundle(t *testing.T) *Bundle {
	t.Helper()

	X := [][]float64{{1, 10}, {2, math.NaN()}, {3, 30}, {4, 40}, {5, 50}, {6, 60}}
	y := []float64{2, 4, 6, 8, 10, 12}

	imp := regression.NewMedianImputer()
	Xi, err := imp.FitTransform(X)
	require.NoError(t, err)

	forest := regression.NewForest(regression.ForestConfig{NEstimators: 5, Seed: 42, Bootstrap: true})
	require.NoError(t, forest.Fit(context.Background(), Xi, y))

	b := NewBundle(forest, imp, []string{"a", "b"}, "target")
	b.Metadata.TrainRows = 6
	b.Metadata.MAE = 0.5
	return b
}

func TestNewBundle(t *testing.T) {
	features := []string{"a", "b"}
	b := NewBundle(regression.NewForest(regression.DefaultForestConfig()), regression.NewMedianImputer(), features, "y")

	assert.NotEmpty(t, b.Metadata.ID)
	assert.Equal(t, "y", b.Metadata.Target)
	assert.False(t, b.Metadata.CreatedAt.IsZero())

	features[0] = "changed"
	assert.Equal(t, "a", b.Features[0])
}

func TestBundleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Bundle)
	}{
		{name: "no model", mutate: func(b *Bundle) { b.Model = nil }},
		{name: "no imputer", mutate: func(b *Bundle) { b.Imputer = nil }},
		{name: "no features", mutate: func(b *Bundle) { b.Features = nil }},
		{name: "unfitted model", mutate: func(b *Bundle) { b.Model = regression.NewForest(regression.DefaultForestConfig()) }},
		{name: "imputer width", mutate: func(b *Bundle) { b.Imputer.Statistics = []float64{1} }},
		{name: "feature count", mutate: func(b *Bundle) { b.Features = []string{"a", "b", "c"} }},
		{name: "empty tree", mutate: func(b *Bundle) { b.Model.Trees[0] = &regression.RegressionTree{} }},
	}

	require.NoError(t, fittedBundle(t).Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fittedBundle(t)
			tt.mutate(b)
			err := b.Validate()
			assert.ErrorIs(t, err, apperrors.ErrArtifactCorrupt)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeArtifact))
		})
	}

	var nilBundle *Bundle
	assert.ErrorIs(t, nilBundle.Validate(), apperrors.ErrArtifactCorrupt)
}

func TestBundlePredict(t *testing.T) {
	b := fittedBundle(t)

	withMissing, err := b.Predict([]float64{2, math.NaN()})
	require.NoError(t, err)
	imputed, err := b.Predict([]float64{2, b.Imputer.Statistics[1]})
	require.NoError(t, err)
	assert.Equal(t, imputed, withMissing)

	_, err = b.Predict([]float64{1})
	assert.Error(t, err)

	preds, err := b.PredictMatrix([][]float64{{1, 10}, {6, 60}})
	require.NoError(t, err)
	assert.Len(t, preds, 2)
}
