package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas de la API.
func NewRouter(
	logger *zap.Logger,
	corsOrigins []string,
	jwtSvc *service.JWTService,
	limiter service.PredictRateLimiter,
	predictionH *PredictionHandler,
	feedbackH *FeedbackHandler,
	realtimeH *RealtimeHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(corsOrigins), jsonContentTypeMiddleware())

	api := r.Group("/api")
	api.GET("/health", healthH.Health)

	authed := api.Group("", OptionalJWTMiddleware(jwtSvc))
	authed.POST("/predict-future", RateLimitMiddleware(logger, limiter), predictionH.PredictFuture)
	authed.GET("/predictions/:userId", predictionH.ListByUser)
	authed.GET("/prediction/:predictionId", predictionH.GetPrediction)
	authed.GET("/prediction/:predictionId/similar", predictionH.Similar)
	authed.GET("/insights/:category", predictionH.CategoryInsights)
	authed.POST("/feedback/:predictionId", feedbackH.SubmitFeedback)
	authed.POST("/followup/:predictionId", feedbackH.SubmitFollowUp)
	authed.GET("/analysis/stream", realtimeH.Stream)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
// El stream SSE lo reemplaza antes de escribir.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
