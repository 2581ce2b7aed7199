package http

import (
	"context"

	"crimerisk/internal/artifact"
	"crimerisk/pkg/contracts/domain"
)

// PredictionServiceInterface defines the prediction operations used by handlers
type PredictionServiceInterface interface {
	Predict(ctx context.Context, area string, year int) (domain.Prediction, error)
	Options() domain.SelectorOptions
	Reload(ctx context.Context) (*artifact.Bundle, error)
}
