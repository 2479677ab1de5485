package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
)

// MetricsHandlers serves the JSON metrics views. The Prometheus text
// endpoint is wired separately through promhttp.
type MetricsHandlers struct {
	metrics *monitoring.Metrics
}

// NewMetricsHandlers creates the metrics handler set
func NewMetricsHandlers(metrics *monitoring.Metrics) *MetricsHandlers {
	return &MetricsHandlers{metrics: metrics}
}

// GetMetricsJSON returns aggregate metrics for dashboards
func (mh *MetricsHandlers) GetMetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary":  mh.metrics.Summarize(),
		"snapshot": mh.metrics.Snapshot(),
	})
}
