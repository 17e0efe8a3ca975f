package http

import (
	"net/http"
)

// MetricsHandler exposes the Prometheus scrape endpoint backed by the
// OpenTelemetry prometheus exporter.
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler wraps the exporter's HTTP handler; nil falls back to 404
// so a disabled-observability deployment still routes cleanly.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
