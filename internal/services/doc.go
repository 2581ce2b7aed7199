// Package services implements the business logic layer on top of the
// data pipeline and the regression toolkit.
//
// # Services
//
//	DatasetService     runs the pipeline from configured sources and exports tables
//	TrainingService    fits imputer and forest, scores the hold-out, persists the artifact
//	PredictionService  answers (area, year) queries against the current artifact
//	EvaluationService  scores the current artifact on the current training set
//	HealthService      liveness and readiness for the HTTP front-end
//
// # Shared state
//
// Services never reach for package-level state. The caller builds one
// PipelineContext and injects it into every service:
//
//	pctx := services.NewPipelineContext()
//	datasets := services.NewDatasetService(cfg, paths, pctx, metrics, logger)
//	predictions := services.NewPredictionService(pctx, store, metrics, logger)
//
// The artifact and the dataset are held behind atomic pointers, so a
// retrain or reload swaps them without blocking concurrent predictions.
package services
