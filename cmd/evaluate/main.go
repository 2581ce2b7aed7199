// Command evaluate scores the persisted artifact against a freshly built
// training dataset.
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
	"crimerisk/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	asJSON := flag.Bool("json", false, "print the evaluation report as JSON")
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
	logger := infrastructure.WithComponent(a.Logger, "evaluate")

	report, err := run(ctx, a)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Evaluation failed")
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

func run(ctx context.Context, a *app.Application) (domain.EvaluationReport, error) {
	if _, err := a.Services.Dataset.Build(ctx); err != nil {
		return domain.EvaluationReport{}, fmt.Errorf("failed to build dataset: %w", err)
	}
	if _, err := a.Services.Prediction.Reload(ctx); err != nil {
		return domain.EvaluationReport{}, fmt.Errorf("failed to load artifact: %w", err)
	}
	return a.Services.Evaluation.Evaluate(ctx)
}

func printReport(out io.Writer, report domain.EvaluationReport) error {
	fmt.Fprintf(out, "artifact  %s\n", report.ArtifactID)
	fmt.Fprintf(out, "rows      %d\n", report.Rows)
	fmt.Fprintf(out, "MAE       %.4f\n\n", report.MAE)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tFEATURE\tIMPORTANCE")
	for i, f := range report.TopFeatures {
		fmt.Fprintf(tw, "%d\t%s\t%.6f\n", i+1, f.Name, f.Importance)
	}
	return tw.Flush()
}
