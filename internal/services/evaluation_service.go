package services

import (
	"context"
	"fmt"
	"log/slog"

	"crimerisk/internal/dataprocessing"
	apperrors "crimerisk/internal/errors"
	"crimerisk/internal/regression"
	"crimerisk/pkg/contracts/domain"
)

// EvaluationService scores the current artifact against the current
// training set
type EvaluationService struct {
	pctx        *PipelineContext
	topFeatures int
	logger      *slog.Logger
}

// NewEvaluationService creates an evaluation service reporting the
// topFeatures most important features
func NewEvaluationService(pctx *PipelineContext, topFeatures int, logger *slog.Logger) *EvaluationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationService{
		pctx:        pctx,
		topFeatures: topFeatures,
		logger:      logger.With(slog.String("component", "evaluation_service")),
	}
}

// Evaluate predicts every training row with the artifact and reports the
// mean absolute error and the ranked feature importances
func (s *EvaluationService) Evaluate(ctx context.Context) (domain.EvaluationReport, error) {
	bundle, err := s.pctx.Artifact()
	if err != nil {
		return domain.EvaluationReport{}, err
	}

	ds := s.pctx.Dataset()
	if ds == nil || ds.Training == nil || ds.Training.Len() == 0 {
		return domain.EvaluationReport{}, apperrors.NewInsufficientDataError(0, "no training rows to evaluate")
	}
	training := ds.Training

	y, ok := training.Column(bundle.Metadata.Target)
	if !ok {
		return domain.EvaluationReport{}, apperrors.NewSchemaError("training set", bundle.Metadata.Target)
	}

	s.warnOnFeatureDrift(ctx, training, bundle.Features)

	predicted, err := bundle.PredictMatrix(FeatureMatrix(training, bundle.Features))
	if err != nil {
		return domain.EvaluationReport{}, fmt.Errorf("failed to predict training rows: %w", err)
	}
	mae, err := regression.MeanAbsoluteError(y, predicted)
	if err != nil {
		return domain.EvaluationReport{}, err
	}

	report := domain.EvaluationReport{
		ArtifactID:  bundle.Metadata.ID,
		MAE:         mae,
		TopFeatures: regression.RankImportances(bundle.Features, bundle.Model.FeatureImportances(), s.topFeatures),
		Rows:        training.Len(),
	}

	s.logger.InfoContext(ctx, "evaluation completed",
		slog.String("artifact_id", report.ArtifactID),
		slog.Float64("mae", mae),
		slog.Int("rows", report.Rows))
	return report, nil
}

// warnOnFeatureDrift logs features the artifact expects but the table lacks;
// they are zero-filled
func (s *EvaluationService) warnOnFeatureDrift(ctx context.Context, t *dataprocessing.Table, features []string) {
	var absent []string
	for _, name := range features {
		if t.Index(name) < 0 {
			absent = append(absent, name)
		}
	}
	if len(absent) > 0 {
		s.logger.WarnContext(ctx, "artifact features missing from dataset, filled with 0",
			slog.Any("features", absent))
	}
}
