package handlers

import (
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Stripe event payloads stay well under this.
const maxWebhookBody = 65536

type webhookHandler struct {
	checkoutService portssvc.CheckoutSvcFacade
}

// RegisterWebhookRoutes mounts the unauthenticated payment webhook. limit runs
// before the body is read.
func RegisterWebhookRoutes(r gin.IRoutes, checkoutService portssvc.CheckoutSvcFacade, limit gin.HandlerFunc) {
	h := &webhookHandler{checkoutService: checkoutService}
	r.POST("/webhooks/stripe", limit, h.handleStripe)
}

// handleStripe godoc
// @Summary Stripe webhook
// @Description Verifies the Stripe-Signature header against the raw body, then applies the event. Replays are acknowledged without effect.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Signature verification failed"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /webhooks/stripe [post]
func (h *webhookHandler) handleStripe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to read body"})
		return
	}

	if err := h.checkoutService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, logger, err, "Failed to process webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
