// Command server runs the prediction HTTP service.
package main

import (
	"flag"
	"log/slog"
	"os"

	"crimerisk/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	a, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		a.Logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
