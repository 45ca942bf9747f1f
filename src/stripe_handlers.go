package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const maxWebhookBytes = int64(65536)

// stripeWebhookRoute keeps intents in step with their checkout sessions.
// Confirmation itself only happens through the finalize operation.
func stripeWebhookRoute(g *gin.RouterGroup, a *app) *gin.RouterGroup {
	g.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBytes))
		if err != nil {
			a.logger.Error("Error reading request body", zap.Error(err))
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		event, err := webhook.ConstructEventWithOptions(payload, ctx.GetHeader("Stripe-Signature"), a.cfg.StripeWebhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			a.logger.Warn("Error verifying webhook signature", zap.Error(err))
			ctx.Status(http.StatusBadRequest)
			return
		}
		a.logger.Info("[StripeEvent]", zap.String("type", string(event.Type)), zap.String("id", event.ID))

		var cs stripe.CheckoutSession
		switch event.Type {
		case "checkout.session.completed", "checkout.session.async_payment_succeeded":
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				a.logger.Error("[Stripe] Error parsing CheckoutSession", zap.Error(err))
				ctx.Status(http.StatusBadRequest)
				return
			}
			if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
				break
			}
			pi := ""
			if cs.PaymentIntent != nil {
				pi = cs.PaymentIntent.ID
			}
			changed, err := a.service.MarkPaid(ctx.Request.Context(), cs.ID, pi)
			if err != nil {
				a.logger.Error("[Stripe] Error marking intent paid", zap.String("session", cs.ID), zap.Error(err))
				ctx.Status(http.StatusInternalServerError)
				return
			}
			a.logger.Info("[Stripe] checkout paid", zap.String("session", cs.ID), zap.Bool("changed", changed))
		case "checkout.session.expired", "checkout.session.async_payment_failed":
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				a.logger.Error("[Stripe] Error parsing CheckoutSession", zap.Error(err))
				ctx.Status(http.StatusBadRequest)
				return
			}
			changed, err := a.service.MarkFailed(ctx.Request.Context(), cs.ID)
			if err != nil {
				a.logger.Error("[Stripe] Error marking intent failed", zap.String("session", cs.ID), zap.Error(err))
				ctx.Status(http.StatusInternalServerError)
				return
			}
			a.logger.Info("[Stripe] checkout closed without payment", zap.String("session", cs.ID), zap.Bool("changed", changed))
		}
		ctx.Status(http.StatusOK)
	})
	return g
}
