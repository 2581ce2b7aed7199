package services

import (
	"sync/atomic"
	"time"

	"crimerisk/internal/artifact"
	"crimerisk/internal/dataprocessing"
	apperrors "crimerisk/internal/errors"
)

// Dataset is the feature data a running process serves from
type Dataset struct {
	Lagged   *dataprocessing.Table
	Training *dataprocessing.Table
	BuiltAt  time.Time
}

// PipelineContext holds the current dataset and model artifact
type PipelineContext struct {
	dataset  atomic.Pointer[Dataset]
	artifact atomic.Pointer[artifact.Bundle]
}

// NewPipelineContext creates an empty context
func NewPipelineContext() *PipelineContext {
	return &PipelineContext{}
}

// SetDataset replaces the current dataset
func (c *PipelineContext) SetDataset(lagged, training *dataprocessing.Table) {
	c.dataset.Store(&Dataset{Lagged: lagged, Training: training, BuiltAt: time.Now()})
}

// Dataset returns the current dataset or nil
func (c *PipelineContext) Dataset() *Dataset {
	return c.dataset.Load()
}

// SetArtifact replaces the current artifact
func (c *PipelineContext) SetArtifact(b *artifact.Bundle) {
	c.artifact.Store(b)
}

// Artifact returns the current artifact, or an ArtifactNotFound error when
// none has been trained or loaded
func (c *PipelineContext) Artifact() (*artifact.Bundle, error) {
	b := c.artifact.Load()
	if b == nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeArtifact, "no model artifact loaded", apperrors.ErrArtifactNotFound)
	}
	return b, nil
}

// HasArtifact reports whether predictions can be served
func (c *PipelineContext) HasArtifact() bool {
	return c.artifact.Load() != nil
}
