// Package http implements the HTTP front-end of the crime-risk estimator.
// Handlers stay thin: they parse and validate the request, call a service
// and render the result.
//
// # Routes
//
//	GET  /                       HTML form with area/year selectors
//	GET  /api/v1/options         distinct areas and years of the dataset
//	GET  /api/v1/predict         point prediction for ?area=&year=
//	POST /api/v1/model/reload    reload the artifact from disk
//	GET  /api/v1/health          health, plus /ready and /live
//	GET  /metrics                Prometheus exposition
//
// A key without data is not an error: /predict answers 200 with
// {"status":"no-data"}. Failures are rendered as RFC 7807 problems by
// errors.ErrorHandler.
package http
