package main

import (
	"clinic/src/booking"
	"clinic/src/middlewares"
	"clinic/src/tracking"
	"clinic/src/types"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bookingRoutes(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.
		GET("", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"locale": middlewares.GetLocale(ctx)})
		}).
		GET("/booking/success", func(ctx *gin.Context) {
			if strings.Contains(ctx.GetHeader("Accept"), "text/event-stream") {
				a.streamBookingSuccess(ctx)
				return
			}
			a.bookingSuccess(ctx)
		}).
		GET("/booking/success/stream", a.streamBookingSuccess)
	return g
}

func (a *app) newReconciler(ctx *gin.Context, observer booking.Observer) *booking.Reconciler {
	raw, _ := ctx.Cookie(tracking.ConsentCookie)
	tracker := a.emitter.ForRequest(ctx.GetString("sid"), tracking.ParseConsent(raw))
	return booking.NewReconciler(a.reader, a.finalizer, tracker,
		booking.WithLogger(a.logger),
		booking.WithObserver(observer),
	)
}

func (a *app) bookingSuccess(ctx *gin.Context) {
	var query types.SuccessPageQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	locale := middlewares.GetLocale(ctx)
	view, err := a.newReconciler(ctx, nil).Run(ctx.Request.Context(), query.SessionID, locale)
	if errors.Is(err, booking.ErrCanceled) {
		// client went away
		ctx.Abort()
		return
	}
	if err != nil {
		a.logger.Error("booking success page failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if view.State == booking.StateRedirect {
		ctx.Redirect(http.StatusTemporaryRedirect, view.Redirect)
		return
	}
	a.decorate(ctx, view)
	ctx.JSON(http.StatusOK, gin.H{"data": view})
}

// streamBookingSuccess sends the loading and processing phases as server-sent
// events while the reconciler runs, then the terminal view.
func (a *app) streamBookingSuccess(ctx *gin.Context) {
	var query types.SuccessPageQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	locale := middlewares.GetLocale(ctx)
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	observer := func(from, to booking.State) {
		if to != booking.StateLoading && to != booking.StateProcessing {
			return
		}
		ctx.SSEvent("phase", gin.H{"state": to, "message": booking.Message(locale, to)})
		ctx.Writer.Flush()
	}
	view, err := a.newReconciler(ctx, observer).Run(ctx.Request.Context(), query.SessionID, locale)
	if errors.Is(err, booking.ErrCanceled) {
		ctx.Abort()
		return
	}
	if err != nil {
		a.logger.Error("booking success stream failed", zap.Error(err))
		ctx.SSEvent("error", gin.H{"error": err.Error()})
		return
	}
	if view.State == booking.StateRedirect {
		ctx.SSEvent("redirect", gin.H{"redirect": view.Redirect})
		return
	}
	a.decorate(ctx, view)
	ctx.SSEvent("view", view)
	ctx.Writer.Flush()
}

// decorate adds the per-request parts of a terminal view.
func (a *app) decorate(ctx *gin.Context, view *booking.View) {
	switch view.State {
	case booking.StateFailed:
		retry := strings.TrimSuffix(ctx.Request.URL.Path, "/stream")
		if ctx.Request.URL.RawQuery != "" {
			retry += "?" + ctx.Request.URL.RawQuery
		}
		view.Retry = retry
	case booking.StateConfirmed, booking.StateDegraded:
		if view.Booking == nil || a.qrcode == nil {
			return
		}
		uri, err := a.qrcode(view.Booking.BookingNumber)
		if err != nil {
			a.logger.Warn("qr code not rendered", zap.String("booking", view.Booking.ID), zap.Error(err))
			return
		}
		view.Booking.QRCode = uri
	}
}
