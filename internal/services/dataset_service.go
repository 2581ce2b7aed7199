package services

import (
	"context"
	"fmt"
	"log/slog"

	"crimerisk/internal/config"
	"crimerisk/internal/dataprocessing"
	"crimerisk/internal/exporter"
	"crimerisk/internal/infrastructure"
)

// DatasetService builds the feature tables from the configured sources
type DatasetService struct {
	sources  []config.SourceConfig
	paths    *config.Paths
	pipeline *dataprocessing.Pipeline
	writer   *exporter.CSVWriter
	pctx     *PipelineContext
	logger   *slog.Logger
}

// NewDatasetService creates a dataset service
func NewDatasetService(cfg *config.Config, paths *config.Paths, pctx *PipelineContext, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		sources:  cfg.Sources,
		paths:    paths,
		pipeline: dataprocessing.NewPipeline(cfg.Training.Target, metrics, logger),
		writer:   exporter.NewCSVWriter(paths, logger),
		pctx:     pctx,
		logger:   logger.With(slog.String("component", "dataset_service")),
	}
}

// SourceSpecs resolves the configured sources against the data directory
func (s *DatasetService) SourceSpecs() []dataprocessing.SourceSpec {
	specs := make([]dataprocessing.SourceSpec, len(s.sources))
	for i, src := range s.sources {
		specs[i] = dataprocessing.SourceSpec{
			Name:         src.Name,
			Path:         s.paths.SourcePath(src.File),
			Sheet:        src.Sheet,
			AreaColumn:   src.AreaColumn,
			YearColumn:   src.YearColumn,
			GroupColumn:  src.GroupColumn,
			Filter:       dataprocessing.Filter{Column: src.FilterColumn, Value: src.FilterValue},
			Measurements: append([]string(nil), src.Measurements...),
		}
	}
	return specs
}

// Build runs the pipeline and publishes the lagged and training tables
func (s *DatasetService) Build(ctx context.Context) (*dataprocessing.Result, error) {
	specs := s.SourceSpecs()
	s.logger.InfoContext(ctx, "building dataset", slog.Int("sources", len(specs)))

	result, err := s.pipeline.Build(ctx, specs)
	if err != nil {
		return nil, err
	}

	if s.pctx != nil {
		s.pctx.SetDataset(result.Lagged, result.Training)
	}
	return result, nil
}

// ExportOptions selects which tables Export writes
type ExportOptions struct {
	Merged bool
	XLSX   bool
}

// Export writes the lagged and training tables to the reports directory and
// returns the written paths
func (s *DatasetService) Export(ctx context.Context, result *dataprocessing.Result, opts ExportOptions) ([]string, error) {
	var written []string
	write := func(name string, t *dataprocessing.Table) error {
		if t == nil {
			return nil
		}
		path, err := s.writer.WriteTable(name, t)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if opts.Merged {
		if err := write(config.MergedCSV, result.Merged); err != nil {
			return written, err
		}
	}
	if err := write(config.LaggedCSV, result.Lagged); err != nil {
		return written, err
	}
	if err := write(config.TrainingCSV, result.Training); err != nil {
		return written, err
	}
	if opts.XLSX && result.Training != nil {
		path, err := s.writer.WriteTableXLSX(config.TrainingXLSX, result.Training)
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", config.TrainingXLSX, err)
		}
		written = append(written, path)
	}

	s.logger.InfoContext(ctx, "dataset exported", slog.Any("files", written))
	return written, nil
}
