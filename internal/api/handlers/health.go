package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/api/response"
	"github.com/dhima/inventory-activity/internal/logging"
)

// Pinger reports whether the Log Store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db     Pinger
	logger logging.Logger
}

// NewHealthHandler creates a new health check handler. db may be nil.
func NewHealthHandler(db Pinger, logger logging.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Service  string `json:"service" example:"inventory-activity"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database" example:"up"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service and its database
// @Tags System
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=HealthResponse}
// @Failure 503 {object} response.ErrorResponse{details=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := HealthResponse{
		Status:   "ok",
		Service:  "inventory-activity",
		Version:  "1.0.0",
		Database: "up",
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			status.Status = "degraded"
			status.Database = "down"
			response.ServiceUnavailable(c, "database unreachable", status)
			return
		}
	}

	response.OK(c, status)
}
