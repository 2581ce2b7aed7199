// Package app wires the crime-risk estimator together: configuration,
// logging, OpenTelemetry, the shared pipeline context, the services and
// the HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, CRIME_* environment)
//	2. Initialize logging and observability
//	3. Resolve and create the data, models, reports and logs directories
//	4. Initialize services around one PipelineContext and artifact store
//	5. Set up HTTP handlers and middleware
//
// The command-line tools use the same container through New and call the
// services directly; the server additionally calls Run.
//
// # Startup State
//
// Start builds the dataset from the raw sources and loads the persisted
// artifact. Neither is fatal: a server without a model answers 503 on
// prediction routes until POST /api/v1/model/reload succeeds.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM, drains in-flight requests within the
// configured shutdown timeout and flushes telemetry providers.
package app
