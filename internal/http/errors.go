package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/service"
)

// writeServiceError traduce los errores del servicio al status HTTP correspondiente.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Error(), "fields": vErr.Fields})
	case errors.Is(err, service.ErrPredictionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "prediction not found"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests"})
	case errors.Is(err, service.ErrTimeout):
		logger.Warn(op+" timed out", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"success": false, "error": "request timed out"})
	case errors.Is(err, service.ErrComputation):
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "prediction computation failed"})
	case errors.Is(err, service.ErrPersistence):
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "storage unavailable"})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
