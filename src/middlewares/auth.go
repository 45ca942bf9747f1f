package middlewares

import (
	"clinic/src/lib"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceAuthMiddleware only lets through callers holding a service token
// signed with secret.
func ServiceAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearerToken := ctx.Request.Header.Get("Authorization")
		if !strings.HasPrefix(bearerToken, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing service token"})
			return
		}
		reqToken := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
		if reqToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing service token"})
			return
		}
		claims, err := lib.ParseServiceToken(secret, reqToken)
		if err != nil {
			zap.L().Warn("service token rejected", zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx.Set("service", claims.Subject)
		ctx.Next()
	}
}
