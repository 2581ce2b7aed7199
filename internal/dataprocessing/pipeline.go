package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"crimerisk/internal/infrastructure"
)

// LoadedSource pairs a source definition with its raw content
type LoadedSource struct {
	Spec SourceSpec
	Raw  *RawTable
}

// Result holds every intermediate table of one pipeline run
type Result struct {
	Merged   *Table
	Filled   *Table
	Lagged   *Table
	Training *Table

	Sources  []AggregateStats
	Merge    MergeStats
	Fill     GapFillStatistics
	Finalize FinalizeStats
}

// Pipeline runs load, aggregate, merge, fill, lag and finalize in order
type Pipeline struct {
	target  string
	filler  *GapFiller
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewPipeline creates a pipeline producing a training set for target.
// An empty target stops after the lag stage.
func NewPipeline(target string, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		target:  target,
		filler:  NewGapFiller(),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "pipeline")),
	}
}

// Build loads every source file concurrently and runs the pipeline
func (p *Pipeline) Build(ctx context.Context, specs []SourceSpec) (*Result, error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.load", attribute.Int("sources", len(specs)))
	loaded := make([]LoadedSource, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			raw, err := LoadSource(spec)
			if err != nil {
				return err
			}
			p.logger.DebugContext(gctx, "source loaded",
				slog.String("source", spec.Name),
				slog.String("path", spec.Path),
				slog.Int("rows", len(raw.Rows)),
				slog.Duration("duration", time.Since(start)))
			loaded[i] = LoadedSource{Spec: spec, Raw: raw}
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	span.End()
	if err != nil {
		infrastructure.RecordPipelineRun(ctx, p.metrics, 0, err)
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	return p.BuildFromRaw(ctx, loaded)
}

// BuildFromRaw runs the pipeline over already loaded sources
func (p *Pipeline) BuildFromRaw(ctx context.Context, sources []LoadedSource) (result *Result, err error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.build", attribute.Int("sources", len(sources)))
	defer span.End()

	unparsable := 0
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		infrastructure.RecordPipelineRun(ctx, p.metrics, unparsable, err)
	}()

	start := time.Now()
	p.logger.InfoContext(ctx, "starting pipeline", slog.Int("sources", len(sources)), slog.String("target", p.target))

	result = &Result{}
	named := make([]NamedTable, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stageStart := time.Now()
		table, stats, err := Aggregate(src.Raw, src.Spec)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate source %s: %w", src.Spec.Name, err)
		}
		unparsable += stats.UnparsableValues
		result.Sources = append(result.Sources, stats)
		named = append(named, NamedTable{Name: src.Spec.Name, Table: table})

		if stats.UnparsableValues > 0 {
			p.logger.DebugContext(ctx, "unparsable measurement cells treated as missing",
				slog.String("source", src.Spec.Name),
				slog.Int("count", stats.UnparsableValues))
		}
		if len(stats.Collisions) > 0 {
			p.logger.WarnContext(ctx, "column name collisions dropped",
				slog.String("source", src.Spec.Name),
				slog.Any("pairs", stats.Collisions))
		}
		p.logger.InfoContext(ctx, "source aggregated",
			slog.String("source", src.Spec.Name),
			slog.Int("raw_rows", stats.RawRows),
			slog.Int("kept_rows", stats.FilteredRows),
			slog.Int("keys", stats.Keys),
			slog.Int("columns", stats.Columns),
			slog.Int("empty_columns", len(stats.EmptyColumns)))
		infrastructure.RecordStageMetrics(ctx, p.metrics, "aggregate", table.Len(), time.Since(stageStart))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart := time.Now()
	merged, mergeStats, err := MergeWithStats(named...)
	if err != nil {
		return nil, fmt.Errorf("failed to merge sources: %w", err)
	}
	result.Merged, result.Merge = merged, mergeStats
	p.logger.InfoContext(ctx, "sources merged",
		slog.Int("keys", mergeStats.Keys),
		slog.Int("columns", mergeStats.Columns),
		slog.Int("renamed", len(mergeStats.Renamed)))
	infrastructure.RecordStageMetrics(ctx, p.metrics, "merge", merged.Len(), time.Since(stageStart))

	stageStart = time.Now()
	filled, fillStats := p.filler.FillWithStats(merged)
	result.Filled, result.Fill = filled, fillStats
	p.logger.InfoContext(ctx, "gaps filled",
		slog.Int("areas", fillStats.AreasProcessed),
		slog.Int("missing_before", fillStats.MissingBefore),
		slog.Int("forward_filled", fillStats.ForwardFilled),
		slog.Int("backward_filled", fillStats.BackwardFilled),
		slog.Int("missing_after", fillStats.MissingAfter))
	infrastructure.RecordStageMetrics(ctx, p.metrics, "fill", filled.Len(), time.Since(stageStart))

	stageStart = time.Now()
	result.Lagged = BuildLags(filled)
	p.logger.InfoContext(ctx, "lag features built",
		slog.Int("rows", result.Lagged.Len()),
		slog.Int("columns", result.Lagged.Width()))
	infrastructure.RecordStageMetrics(ctx, p.metrics, "lag", result.Lagged.Len(), time.Since(stageStart))

	if p.target != "" {
		stageStart = time.Now()
		training, finStats, err := FinalizeWithStats(result.Lagged, p.target)
		if err != nil {
			return nil, fmt.Errorf("failed to finalize training set: %w", err)
		}
		result.Training, result.Finalize = training, finStats
		p.logger.InfoContext(ctx, "training set finalized",
			slog.Int("rows", finStats.OutputRows),
			slog.Int("dropped_rows", finStats.MissingTargetRows),
			slog.Int("duplicate_columns", len(finStats.DuplicateColumns)),
			slog.Int("empty_columns", len(finStats.EmptyColumns)))
		infrastructure.RecordStageMetrics(ctx, p.metrics, "finalize", training.Len(), time.Since(stageStart))
	}

	p.logger.InfoContext(ctx, "pipeline completed", slog.Duration("duration", time.Since(start)))
	return result, nil
}
