package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"crimerisk/internal/artifact"
	"crimerisk/internal/config"
	"crimerisk/internal/dataprocessing"
	apperrors "crimerisk/internal/errors"
	"crimerisk/internal/infrastructure"
	"crimerisk/internal/regression"
	"crimerisk/pkg/contracts/domain"
)

// TrainingService fits the model bundle on a finalized training set
type TrainingService struct {
	cfg     config.TrainingConfig
	store   *artifact.Store
	pctx    *PipelineContext
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewTrainingService creates a training service. A nil store skips
// persistence and a nil context skips publishing the new artifact.
func NewTrainingService(cfg config.TrainingConfig, store *artifact.Store, pctx *PipelineContext, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *TrainingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainingService{
		cfg:     cfg,
		store:   store,
		pctx:    pctx,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "training_service")),
	}
}

// ForestConfig maps the training configuration onto the forest
func (s *TrainingService) ForestConfig() regression.ForestConfig {
	return regression.ForestConfig{
		NEstimators: s.cfg.Estimators,
		Seed:        s.cfg.Seed,
		Workers:     s.cfg.Workers,
		Bootstrap:   true,
		Tree: regression.TreeParams{
			MaxDepth:        s.cfg.MaxDepth,
			MinSamplesSplit: s.cfg.MinSamplesSplit,
			MinSamplesLeaf:  s.cfg.MinSamplesLeaf,
		},
	}
}

// Train fits imputer and forest on training, scores the hold-out split,
// persists the bundle and makes it current
func (s *TrainingService) Train(ctx context.Context, training *dataprocessing.Table) (bundle *artifact.Bundle, report domain.TrainingReport, err error) {
	ctx, span := infrastructure.StartSpan(ctx, "training.train")
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		infrastructure.RecordTrainingMetrics(ctx, s.metrics, time.Since(start), report.MAE, err)
	}()

	target := s.cfg.Target
	if training == nil || training.Len() == 0 {
		return nil, report, apperrors.NewInsufficientDataError(0, "training set is empty")
	}
	y, ok := training.Column(target)
	if !ok {
		return nil, report, apperrors.NewSchemaError("training set", target)
	}
	features := dataprocessing.FeatureColumns(training, target)
	if len(features) == 0 {
		return nil, report, apperrors.NewInsufficientDataError(training.Len(), "no feature columns")
	}

	split, err := regression.TrainTestSplit(training.Len(), s.cfg.TestFraction, s.cfg.Seed)
	if err != nil {
		return nil, report, err
	}

	s.logger.InfoContext(ctx, "training started",
		slog.String("target", target),
		slog.Int("rows", training.Len()),
		slog.Int("features", len(features)),
		slog.Int("train_rows", len(split.Train)),
		slog.Int("test_rows", len(split.Test)))

	imputer := regression.NewMedianImputer()
	X, err := imputer.FitTransform(FeatureMatrix(training, features))
	if err != nil {
		return nil, report, fmt.Errorf("failed to impute features: %w", err)
	}

	forest := regression.NewForest(s.ForestConfig())
	if err := forest.Fit(ctx, regression.Rows(X, split.Train), regression.Values(y, split.Train)); err != nil {
		return nil, report, fmt.Errorf("failed to fit forest: %w", err)
	}

	predicted := forest.Predict(regression.Rows(X, split.Test))
	mae, err := regression.MeanAbsoluteError(regression.Values(y, split.Test), predicted)
	if err != nil {
		return nil, report, fmt.Errorf("failed to score hold-out: %w", err)
	}

	bundle = artifact.NewBundle(forest, imputer, features, target)
	bundle.Metadata.TrainRows = len(split.Train)
	bundle.Metadata.TestRows = len(split.Test)
	bundle.Metadata.MAE = mae

	if s.store != nil {
		if err := s.store.Save(bundle); err != nil {
			return nil, report, fmt.Errorf("failed to persist artifact: %w", err)
		}
	}
	if s.pctx != nil {
		s.pctx.SetArtifact(bundle)
	}

	span.SetAttributes(attribute.Float64("mae", mae), attribute.String("artifact_id", bundle.Metadata.ID))

	report = domain.TrainingReport{
		ArtifactID:   bundle.Metadata.ID,
		Target:       target,
		MAE:          mae,
		TopFeatures:  regression.RankImportances(features, forest.FeatureImportances(), s.cfg.TopFeatures),
		TrainRows:    len(split.Train),
		TestRows:     len(split.Test),
		FeatureCount: len(features),
		Duration:     time.Since(start),
		TrainedAt:    bundle.Metadata.CreatedAt,
	}

	s.logger.InfoContext(ctx, "training completed",
		slog.String("artifact_id", report.ArtifactID),
		slog.Float64("mae", mae),
		slog.Duration("duration", report.Duration))
	return bundle, report, nil
}
