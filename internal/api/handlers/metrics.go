package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhima/inventory-activity/internal/logging"
)

// MetricsHandler exposes Prometheus metrics.
type MetricsHandler struct {
	handler http.Handler
	logger  logging.Logger
}

// NewMetricsHandler serves the default registry.
func NewMetricsHandler(logger logging.Logger) *MetricsHandler {
	return NewMetricsHandlerFor(prometheus.DefaultGatherer, logger)
}

// NewMetricsHandlerFor serves metrics from gatherer.
func NewMetricsHandlerFor(gatherer prometheus.Gatherer, logger logging.Logger) *MetricsHandler {
	return &MetricsHandler{
		handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		logger:  logger,
	}
}

// Metrics godoc
// @Summary Prometheus metrics
// @Description Exposes activity recorder, query and HTTP metrics in the Prometheus text format
// @Tags System
// @Produce plain
// @Success 200 {string} string "Prometheus exposition"
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
