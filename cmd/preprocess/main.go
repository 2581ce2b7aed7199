// Command preprocess builds the lagged and training datasets from the raw
// crime tables and writes them to the reports directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crimerisk/internal/app"
	"crimerisk/internal/infrastructure"
	"crimerisk/internal/dataprocessing"
	"crimerisk/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	merged := flag.Bool("merged", false, "also write the merged table before gap filling")
	xlsx := flag.Bool("xlsx", false, "also write the training table as an Excel workbook")
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
	logger := infrastructure.WithComponent(a.Logger, "preprocess")

	opts := services.ExportOptions{Merged: *merged, XLSX: *xlsx}
	if err := run(ctx, a, opts, os.Stdout); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Preprocessing failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.Application, opts services.ExportOptions, out io.Writer) error {
	result, err := a.Services.Dataset.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build dataset: %w", err)
	}

	written, err := a.Services.Dataset.Export(ctx, result, opts)
	if err != nil {
		return fmt.Errorf("failed to export dataset: %w", err)
	}

	printSummary(out, result, written)
	return nil
}

func printSummary(out io.Writer, result *dataprocessing.Result, written []string) {
	for _, src := range result.Sources {
		fmt.Fprintf(out, "source %-12s rows=%d keys=%d columns=%d unparsable=%d\n",
			src.Source, src.RawRows, src.Keys, src.Columns, src.UnparsableValues)
	}
	fmt.Fprintf(out, "merged   %d rows x %d columns\n", result.Merged.Len(), result.Merged.Width())
	fmt.Fprintf(out, "lagged   %d rows x %d columns\n", result.Lagged.Len(), result.Lagged.Width())
	fmt.Fprintf(out, "training %d rows x %d columns\n", result.Training.Len(), result.Training.Width())
	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
}
