package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/service"
)

const authClaimsKey = "auth_claims"

// OptionalJWTMiddleware valida el access token si viene en el header y guarda los claims.
// Sin header la request sigue como anonima; un token invalido se rechaza con 401.
func OptionalJWTMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !jwtSvc.Enabled() {
			c.Next()
			return
		}
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid authorization header"})
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// RateLimitMiddleware limita por usuario autenticado o, si no hay, por IP.
func RateLimitMiddleware(logger *zap.Logger, limiter service.PredictRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims, ok := GetAuthClaims(c); ok {
			key = "user:" + claims.UserID
		}
		if !limiter.Allow(key) {
			logger.Debug("predict rate limited", zap.String("key", key))
			writeServiceError(c, logger, "predict", service.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
