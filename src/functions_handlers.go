package main

import (
	"clinic/src/booking"
	"clinic/src/middlewares"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// functionRoutes exposes the trusted finalize operation to other services.
func functionRoutes(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	fn := g.Group("/functions", middlewares.ServiceAuthMiddleware([]byte(a.cfg.ServiceJWTSecret)))
	fn.POST("/process-booking", func(ctx *gin.Context) {
		var body booking.FinalizeRequest
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := a.service.FinalizeBooking(ctx.Request.Context(), body)
		if err != nil {
			a.logger.Error("process-booking failed", zap.String("session", body.StripeSessionID), zap.Error(err))
			ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if res.Error != "" {
			ctx.JSON(http.StatusOK, gin.H{"error": res.Error})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"booking": res.Booking})
	})
	return fn
}
