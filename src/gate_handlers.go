package main

import (
	"clinic/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func gateRoutes(g *gin.RouterGroup, a *app, session gin.HandlerFunc) *gin.RouterGroup {
	g.POST("/gate", session, func(ctx *gin.Context) {
		var body types.GateLoginRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ok, err := a.gate.Unlock(ctx.Request.Context(), ctx.GetString("sid"), body.Password)
		if err != nil {
			a.logger.Error("gate unlock failed", zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		}
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return g
}
