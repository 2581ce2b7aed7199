package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimerisk/internal/dataprocessing"
	apperrors "crimerisk/internal/errors"
)

func TestTrainingService_Train(t *testing.T) {
	store := testStore(t)
	pctx := NewPipelineContext()
	svc := NewTrainingService(testTrainingConfig(), store, pctx, nil, quietLogger())

	table := syntheticTable()
	bundle, report, err := svc.Train(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, []string{"F", "T_lag1"}, bundle.Features)
	assert.Equal(t, testTarget, bundle.Metadata.Target)
	assert.Equal(t, 6, report.TestRows)
	assert.Equal(t, 24, report.TrainRows)
	assert.Equal(t, 2, report.FeatureCount)
	assert.Len(t, report.TopFeatures, 2)
	assert.GreaterOrEqual(t, report.MAE, 0.0)
	assert.Equal(t, bundle.Metadata.ID, report.ArtifactID)
	assert.Equal(t, report.MAE, bundle.Metadata.MAE)

	assert.True(t, store.Exists())
	current, err := pctx.Artifact()
	require.NoError(t, err)
	assert.Same(t, bundle, current)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, bundle.Metadata.ID, loaded.Metadata.ID)
}

func TestTrainingService_Deterministic(t *testing.T) {
	cfg := testTrainingConfig()
	table := syntheticTable()

	_, first, err := NewTrainingService(cfg, nil, nil, nil, quietLogger()).Train(context.Background(), table)
	require.NoError(t, err)

	cfg.Workers = 1
	_, second, err := NewTrainingService(cfg, nil, nil, nil, quietLogger()).Train(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, first.MAE, second.MAE)
	assert.Equal(t, first.TopFeatures, second.TopFeatures)
}

func TestTrainingService_Errors(t *testing.T) {
	svc := NewTrainingService(testTrainingConfig(), nil, nil, nil, quietLogger())
	ctx := context.Background()

	t.Run("nil table", func(t *testing.T) {
		_, _, err := svc.Train(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTrainingData)
	})

	t.Run("empty table", func(t *testing.T) {
		_, _, err := svc.Train(ctx, dataprocessing.NewTable(nil))
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTrainingData)
	})

	t.Run("single row cannot be split", func(t *testing.T) {
		one := syntheticTable().Select([]int{0})
		_, _, err := svc.Train(ctx, one)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTrainingData)
	})

	t.Run("missing target", func(t *testing.T) {
		table := &dataprocessing.Table{
			Keys:    []dataprocessing.Key{{Area: "A", Year: 2001}},
			Columns: []dataprocessing.Column{{Name: "F", Values: []float64{1}}},
		}
		_, _, err := svc.Train(ctx, table)
		assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	})

	t.Run("no feature columns", func(t *testing.T) {
		table := &dataprocessing.Table{
			Keys:    []dataprocessing.Key{{Area: "A", Year: 2001}, {Area: "A", Year: 2002}},
			Columns: []dataprocessing.Column{{Name: testTarget, Values: []float64{1, 2}}},
		}
		_, _, err := svc.Train(ctx, table)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTrainingData)
	})
}
