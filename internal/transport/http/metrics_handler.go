package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the Prometheus exposition handler. The OTel
// Prometheus exporter registers with the default registry, so a nil
// handler falls back to promhttp.Handler.
func MetricsHandler(h http.Handler) http.Handler {
	if h != nil {
		return h
	}
	return promhttp.Handler()
}
