// Command train builds the training dataset, fits the random forest,
// persists the artifact and writes the feature importance report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"crimerisk/internal/app"
	"crimerisk/internal/infrastructure"
	"crimerisk/internal/config"
	"crimerisk/internal/exporter"
	"crimerisk/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	asJSON := flag.Bool("json", false, "print the training report as JSON")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	a, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.OTelProviders.Shutdown(context.Background())
	logger := infrastructure.WithComponent(a.Logger, "train")

	report, err := run(ctx, a)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Training failed")
		os.Exit(1)
	}

	if *asJSON {
		err = json.NewEncoder(os.Stdout).Encode(report)
	} else {
		err = printReport(os.Stdout, report)
	}
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Failed to print report")
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.Application) (domain.TrainingReport, error) {
	result, err := a.Services.Dataset.Build(ctx)
	if err != nil {
		return domain.TrainingReport{}, fmt.Errorf("failed to build dataset: %w", err)
	}

	_, report, err := a.Services.Training.Train(ctx, result.Training)
	if err != nil {
		return domain.TrainingReport{}, err
	}

	writer := exporter.NewCSVWriter(a.Paths, a.Logger)
	path, err := writer.WriteImportances(config.ReportCSV, report.TopFeatures)
	if err != nil {
		return report, fmt.Errorf("failed to write importance report: %w", err)
	}
	a.Logger.InfoContext(ctx, "Importance report written", slog.String("path", path))

	return report, nil
}

func printReport(out io.Writer, report domain.TrainingReport) error {
	fmt.Fprintf(out, "artifact  %s\n", report.ArtifactID)
	fmt.Fprintf(out, "target    %s\n", report.Target)
	fmt.Fprintf(out, "rows      train=%d test=%d\n", report.TrainRows, report.TestRows)
	fmt.Fprintf(out, "features  %d\n", report.FeatureCount)
	fmt.Fprintf(out, "MAE       %.4f\n", report.MAE)
	fmt.Fprintf(out, "duration  %s\n\n", report.Duration)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tFEATURE\tIMPORTANCE")
	for i, f := range report.TopFeatures {
		fmt.Fprintf(tw, "%d\t%s\t%.6f\n", i+1, f.Name, f.Importance)
	}
	return tw.Flush()
}
