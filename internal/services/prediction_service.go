package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"crimerisk/internal/artifact"
	"crimerisk/internal/dataprocessing"
	"crimerisk/internal/infrastructure"
	"crimerisk/pkg/contracts/domain"
)

// PredictionService answers point predictions for (area, year) pairs
type PredictionService struct {
	pctx    *PipelineContext
	store   *artifact.Store
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewPredictionService creates a prediction service. store is only used
// by Reload and may be nil.
func NewPredictionService(pctx *PipelineContext, store *artifact.Store, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		pctx:    pctx,
		store:   store,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "prediction_service")),
	}
}

// Predict estimates the target for area and year. A key without a feature
// row yields a no-data prediction and a nil error; a missing artifact is
// an error.
func (s *PredictionService) Predict(ctx context.Context, area string, year int) (domain.Prediction, error) {
	ctx, span := infrastructure.StartSpan(ctx, "prediction.predict",
		attribute.String("area", area), attribute.Int("year", year))
	defer span.End()

	bundle, err := s.pctx.Artifact()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.Prediction{}, err
	}

	row, ok := s.lookup(area, year)
	if !ok {
		s.logger.DebugContext(ctx, "no feature row for key",
			slog.String("area", area), slog.Int("year", year))
		infrastructure.RecordPrediction(ctx, s.metrics, string(domain.PredictionNoData))
		return domain.NoData(area, year), nil
	}

	value, err := bundle.Predict(Reindex(row, bundle.Features))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.Prediction{}, fmt.Errorf("failed to predict %s/%d: %w", area, year, err)
	}

	infrastructure.RecordPrediction(ctx, s.metrics, string(domain.PredictionOK))
	return domain.Prediction{
		Area:       area,
		Year:       year,
		Status:     domain.PredictionOK,
		Value:      &value,
		ArtifactID: bundle.Metadata.ID,
	}, nil
}

func (s *PredictionService) lookup(area string, year int) (map[string]float64, bool) {
	ds := s.pctx.Dataset()
	if ds == nil || ds.Lagged == nil {
		return nil, false
	}
	i, ok := ds.Lagged.Find(dataprocessing.Key{Area: area, Year: year})
	if !ok {
		return nil, false
	}
	return ds.Lagged.Row(i), true
}

// Options lists the areas and years present in the current dataset
func (s *PredictionService) Options() domain.SelectorOptions {
	ds := s.pctx.Dataset()
	if ds == nil || ds.Lagged == nil {
		return domain.SelectorOptions{Areas: []string{}, Years: []int{}}
	}
	return domain.SelectorOptions{Areas: ds.Lagged.Areas(), Years: ds.Lagged.Years()}
}

// Reload reads the artifact from the store and makes it current. A failed
// load keeps the previous artifact.
func (s *PredictionService) Reload(ctx context.Context) (*artifact.Bundle, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no artifact store configured")
	}

	bundle, err := s.store.Load()
	if err != nil {
		s.logger.WarnContext(ctx, "artifact reload failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.pctx.SetArtifact(bundle)
	s.logger.InfoContext(ctx, "artifact reloaded",
		slog.String("artifact_id", bundle.Metadata.ID),
		slog.Int("features", len(bundle.Features)))
	return bundle, nil
}
