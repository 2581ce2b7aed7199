package artifact

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "crimerisk/internal/errors"
	"crimerisk/internal/regression"
)

// Metadata describes how a bundle was produced
type Metadata struct {
	ID        string
	Target    string
	CreatedAt time.Time
	TrainRows int
	TestRows  int
	MAE       float64
}

// Bundle is the unit of persistence: model, imputer and feature order
type Bundle struct {
	Model    *regression.Forest
	Imputer  *regression.MedianImputer
	Features []string
	Metadata Metadata
}

// NewBundle assembles a bundle with a fresh id
func NewBundle(model *regression.Forest, imputer *regression.MedianImputer, features []string, target string) *Bundle {
	return &Bundle{
		Model:    model,
		Imputer:  imputer,
		Features: append([]string(nil), features...),
		Metadata: Metadata{
			ID:        uuid.New().String(),
			Target:    target,
			CreatedAt: time.Now().UTC(),
		},
	}
}

// Validate rejects partial or inconsistent bundles
func (b *Bundle) Validate() error {
	switch {
	case b == nil:
		return apperrors.NewArtifactError("bundle is nil", nil)
	case b.Model == nil:
		return apperrors.NewArtifactError("bundle has no model", nil)
	case b.Imputer == nil:
		return apperrors.NewArtifactError("bundle has no imputer", nil)
	case len(b.Features) == 0:
		return apperrors.NewArtifactError("bundle has no features", nil)
	case !b.Model.Fitted():
		return apperrors.NewArtifactError("model has no trees", nil)
	}

	if w := b.Imputer.Width(); w != len(b.Features) {
		return apperrors.NewArtifactError(
			fmt.Sprintf("imputer expects %d features, bundle lists %d", w, len(b.Features)), nil)
	}
	if w := b.Model.NFeatures; w != len(b.Features) {
		return apperrors.NewArtifactError(
			fmt.Sprintf("model expects %d features, bundle lists %d", w, len(b.Features)), nil)
	}
	for i, t := range b.Model.Trees {
		if t == nil || len(t.Nodes) == 0 {
			return apperrors.NewArtifactError(fmt.Sprintf("tree %d is empty", i), nil)
		}
	}
	return nil
}

// Predict imputes one feature row in bundle order and runs the model
func (b *Bundle) Predict(row []float64) (float64, error) {
	imputed, err := b.Imputer.TransformRow(row)
	if err != nil {
		return 0, fmt.Errorf("impute: %w", err)
	}
	return b.Model.PredictRow(imputed), nil
}

// PredictMatrix imputes and predicts every row of X
func (b *Bundle) PredictMatrix(X [][]float64) ([]float64, error) {
	imputed, err := b.Imputer.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}
	return b.Model.Predict(imputed), nil
}
