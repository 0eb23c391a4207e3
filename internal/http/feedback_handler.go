package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/service"
)

// FeedbackHandler expone la carga de feedback y seguimiento sobre predicciones.
type FeedbackHandler struct {
	logger   *zap.Logger
	feedback *service.FeedbackService
}

func NewFeedbackHandler(logger *zap.Logger, feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, feedback: feedback}
}

// SubmitFeedback maneja POST /api/feedback/:predictionId.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req service.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}

	if _, err := h.feedback.SubmitFeedback(c.Request.Context(), c.Param("predictionId"), req); err != nil {
		writeServiceError(c, h.logger, "submit feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback recorded"})
}

// SubmitFollowUp maneja POST /api/followup/:predictionId.
func (h *FeedbackHandler) SubmitFollowUp(c *gin.Context) {
	var req service.FollowUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid follow-up request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}

	if _, err := h.feedback.SubmitFollowUp(c.Request.Context(), c.Param("predictionId"), req); err != nil {
		writeServiceError(c, h.logger, "submit follow-up", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Follow-up recorded"})
}
