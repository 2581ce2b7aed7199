package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"crimerisk/internal/artifact"
	"crimerisk/internal/config"
	apierrors "crimerisk/internal/errors"
	"crimerisk/internal/infrastructure"
	customMiddleware "crimerisk/internal/middleware"
	"crimerisk/internal/services"
	handlers "crimerisk/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Services      *ServiceContainer
	Router        *chi.Mux
	Server        *http.Server
}

// ServiceContainer holds all application services. They share one
// PipelineContext, so a dataset built or a model trained through one
// service is visible to the others.
type ServiceContainer struct {
	Context    *services.PipelineContext
	Store      *artifact.Store
	Dataset    *services.DatasetService
	Training   *services.TrainingService
	Prediction *services.PredictionService
	Evaluation *services.EvaluationService
	Health     *services.HealthService
}

// NewApplication loads configuration from configFile (or the usual
// locations when empty), initializes the global logger and wires the
// application.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Relative log files live under the base directory, not the working directory
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if cfg.Logging.FilePath != "" {
		cfg.Logging.FilePath = paths.LogPath(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	pctx := services.NewPipelineContext()
	store := artifact.NewStore(a.Paths.ArtifactPath(), a.Logger)

	a.Services = &ServiceContainer{
		Context:    pctx,
		Store:      store,
		Dataset:    services.NewDatasetService(a.Config, a.Paths, pctx, a.Metrics, a.Logger),
		Training:   services.NewTrainingService(a.Config.Training, store, pctx, a.Metrics, a.Logger),
		Prediction: services.NewPredictionService(pctx, store, a.Metrics, a.Logger),
		Evaluation: services.NewEvaluationService(pctx, a.Config.Training.TopFeatures, a.Logger),
		Health:     services.NewHealthService(config.AppVersion, pctx),
	}
}

// setupRouter configures routes and middleware.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Prometheus scrapes are not subject to the request timeout
	r.Handle(config.MetricsEndpoint, handlers.MetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		htmlHandler := handlers.NewHTMLHandler(a.Services.Prediction, a.Logger)
		r.Get("/", htmlHandler.ServeIndex)

		healthHandler := handlers.NewHealthHandler(a.Services.Health)
		r.Mount(config.HealthEndpoint, healthHandler.Routes())

		predictionHandler := handlers.NewPredictionHandler(a.Services.Prediction, a.Logger, errorHandler)
		r.Mount(config.APIBasePath, predictionHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// LoadState builds the dataset from the raw sources and loads the persisted
// artifact. A missing artifact is not an error: the server starts degraded
// and answers 503 until a model is trained and reloaded.
func (a *Application) LoadState(ctx context.Context) error {
	var errs []error

	if _, err := a.Services.Dataset.Build(ctx); err != nil {
		errs = append(errs, fmt.Errorf("dataset: %w", err))
	}

	if _, err := a.Services.Prediction.Reload(ctx); err != nil {
		if errors.Is(err, apierrors.ErrArtifactNotFound) {
			a.Logger.WarnContext(ctx, "No model artifact found, predictions disabled until one is trained",
				slog.String("path", a.Services.Store.Path()))
		} else {
			errs = append(errs, fmt.Errorf("artifact: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Start loads state and starts serving in the background. A listener
// failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.LoadState(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup state incomplete", slog.String("warnings", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
