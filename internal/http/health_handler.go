package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler reporta el estado del motor y de la base.
type HealthHandler struct {
	logger *zap.Logger
	ping   func(ctx context.Context) error
}

// NewHealthHandler recibe la funcion de ping de la base; nil se reporta como sin base.
func NewHealthHandler(logger *zap.Logger, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{logger: logger, ping: ping}
}

// Health maneja GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "healthy"
	database := "connected"

	if h.ping == nil {
		database = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			overall = "degraded"
			database = "disconnected"
		}
	}

	c.JSON(status, gin.H{
		"status":            overall,
		"prediction_engine": "operational",
		"database":          database,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}
