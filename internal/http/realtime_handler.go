package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/realtime"
)

// RealtimeHandler abre streams SSE sobre el canal de analisis de un suscriptor.
type RealtimeHandler struct {
	logger *zap.Logger
	hub    *realtime.Hub
}

func NewRealtimeHandler(logger *zap.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{logger: logger, hub: hub}
}

// Stream maneja GET /api/analysis/stream. Un usuario autenticado sin subscriber_id
// escucha el canal de su propio id.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	subscriberID := strings.TrimSpace(c.Query("subscriber_id"))
	if subscriberID == "" {
		if claims, ok := GetAuthClaims(c); ok {
			subscriberID = claims.UserID
		}
	}
	if subscriberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing subscriber_id", "fields": []string{"subscriber_id"}})
		return
	}

	client := h.hub.NewClient(subscriberID)
	h.hub.AddChannel(client, domain.AnalysisChannel(subscriberID))
	h.logger.Info("sse stream open", zap.String("subscriber_id", subscriberID), zap.String("client_id", client.ID.String()))

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.logger.Info("sse stream closed", zap.String("client_id", client.ID.String()))
}
